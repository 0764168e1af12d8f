package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	bt "github.com/comalice/behaviortreex"
)

// TreeSnapshot is the persisted state of one tree.
type TreeSnapshot struct {
	TreeID     string         `json:"tree_id" yaml:"tree_id"`
	Ticks      uint64         `json:"ticks" yaml:"ticks"`
	Status     string         `json:"status" yaml:"status"`
	Now        time.Duration  `json:"now" yaml:"now"`
	Blackboard map[string]any `json:"blackboard,omitempty" yaml:"blackboard,omitempty"`
}

// Capture takes a snapshot of root. Non-finite numbers are stored as their
// string form since JSON cannot carry them.
func Capture(root *bt.Root) TreeSnapshot {
	snap := TreeSnapshot{
		TreeID: root.ID(),
		Ticks:  root.TickCount(),
		Status: root.Status().String(),
		Now:    root.Clock().Now(),
	}
	if data := root.Blackboard().Snapshot(); len(data) > 0 {
		snap.Blackboard = make(map[string]any, len(data))
		for k, v := range data {
			if f, ok := v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
				v = strconv.FormatFloat(f, 'g', -1, 64)
			}
			snap.Blackboard[k] = v
		}
	}
	return snap
}

// Persister saves and loads tree snapshots by tree id.
type Persister interface {
	Save(ctx context.Context, snapshot TreeSnapshot) error
	Load(ctx context.Context, treeID string) (TreeSnapshot, error)
}

// JSONPersister is a file-based persister using JSON serialization.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot TreeSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return writeSnapshot(filepath.Join(p.dir, snapshot.TreeID+".json"), data)
}

func (p *JSONPersister) Load(ctx context.Context, treeID string) (TreeSnapshot, error) {
	data, err := readSnapshot(filepath.Join(p.dir, treeID+".json"), treeID)
	if err != nil {
		return TreeSnapshot{}, err
	}
	var snapshot TreeSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return TreeSnapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	snapshot.TreeID = treeID
	return snapshot, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, snapshot TreeSnapshot) error {
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	return writeSnapshot(filepath.Join(p.dir, snapshot.TreeID+".yaml"), data)
}

func (p *YAMLPersister) Load(ctx context.Context, treeID string) (TreeSnapshot, error) {
	data, err := readSnapshot(filepath.Join(p.dir, treeID+".yaml"), treeID)
	if err != nil {
		return TreeSnapshot{}, err
	}
	var snapshot TreeSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return TreeSnapshot{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	snapshot.TreeID = treeID
	if _, err := bt.ParseStatus(snapshot.Status); err != nil {
		return TreeSnapshot{}, fmt.Errorf("snapshot %q: %w", treeID, err)
	}
	return snapshot, nil
}

func writeSnapshot(fn string, data []byte) error {
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func readSnapshot(fn, treeID string) ([]byte, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("tree %q: %w", treeID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	return data, nil
}
