package canopy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// testStep is a single action of a test script.
type testStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
	Key    string  `yaml:"key,omitempty"`
}

// testScript is the top-level structure of a test script.
type testScript struct {
	Steps []testStep `yaml:"steps"`
}

// TestRunner sequences injected input and screenshots across frames for
// automated visual testing. Attach it with Application.SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a YAML test script. JSON scripts parse too.
//
//	steps:
//	  - {action: click, x: 40, y: 20}
//	  - {action: key, key: tab}
//	  - {action: wait, frames: 10}
//	  - {action: screenshot, label: after-click}
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "drag", "wait", "screenshot":
		case "key":
			if _, ok := KeyByName(st.Key); !ok {
				return nil, fmt.Errorf("parse test script: step %d: unknown key %q", i+1, st.Key)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i+1, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func loadTestScriptFile(path string) (*TestRunner, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Op: "read test script", Path: path, Err: err}
	}
	return LoadTestScript(b)
}

// SetTestRunner attaches a runner. Its step method is called at the start
// of each Update.
func (a *Application) SetTestRunner(runner *TestRunner) {
	a.testRunner = runner
}

// Done reports whether all steps of the script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *TestRunner) step(a *Application) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(a.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		a.Screenshot(st.Label)
	case "click":
		a.InjectClick(st.X, st.Y)
	case "drag":
		a.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "key":
		key, _ := KeyByName(st.Key)
		a.InjectKey(key)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(a.injectQueue) == 0 {
		r.done = true
	}
}
