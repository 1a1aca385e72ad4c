// Package tool interprets pointer gestures according to the active drawing
// tool and commits the resulting primitives to a layer store.
package tool

import (
	"fmt"
	"image/color"
)

// Tool is a palette entry selecting how gestures are interpreted.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPen
	ToolEraser
	ToolRectangle
	ToolText
	ToolImage
)

var toolNames = []string{"select", "pen", "eraser", "rectangle", "text", "image"}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool maps a tool name to its Tool value.
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	switch name {
	case "rect":
		return ToolRectangle, nil
	case "erase":
		return ToolEraser, nil
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// Phase is the per-gesture state of the machine.
type Phase int

const (
	// PhaseIdle means no gesture is in progress.
	PhaseIdle Phase = iota
	// PhaseAuthoring accumulates a stroke or rectangle between start and end.
	PhaseAuthoring
	// PhaseTextPending waits for the host to confirm or cancel text entry.
	PhaseTextPending
	// PhaseSelecting lasts from a select press until its release.
	PhaseSelecting
	// PhaseDecoding waits for a picked image to finish decoding.
	PhaseDecoding
	// PhasePendingPlacement stamps the decoded image on the next press.
	PhasePendingPlacement
)

var phaseNames = []string{"idle", "authoring", "text-pending", "selecting", "decoding", "pending-placement"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Settings are the palette values chosen by the user. They live as long as
// the canvas and are never persisted.
type Settings struct {
	Tool     Tool
	Color    color.RGBA
	Width    float64
	FontSize float64
}

// DefaultSettings returns the settings a canvas starts with: pen, black,
// width 2 and 16pt text.
func DefaultSettings() Settings {
	return Settings{
		Tool:     ToolPen,
		Color:    color.RGBA{A: 255},
		Width:    2,
		FontSize: 16,
	}
}
