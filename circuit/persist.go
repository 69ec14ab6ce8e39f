package circuit

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/katalvlaran/hclt/family"
)

// artifactVersion is bumped whenever the encoded layout changes.
const artifactVersion = 1

// artifact is the persisted snapshot: structure plus parameters.
// Flows are not persisted.
type artifact struct {
	Version  int
	ID       uuid.UUID
	NumVars  int
	Device   Device
	Root     int
	Nodes    []node
	Layers   []Layer
	Families []family.Spec
	SumW     []float64
	InParams []float64
}

// Save writes the circuit as a gzip-compressed gob stream.
func (c *Circuit) Save(w io.Writer) error {
	a := artifact{
		Version:  artifactVersion,
		ID:       c.ID,
		NumVars:  c.NumVars,
		Device:   c.Device,
		Root:     c.root,
		Nodes:    c.nodes,
		Layers:   c.Layers,
		SumW:     c.sumW,
		InParams: c.inParams,
	}
	for _, f := range c.families {
		a.Families = append(a.Families, f.Spec())
	}

	gz := gzip.NewWriter(w)
	if err := gob.NewEncoder(gz).Encode(&a); err != nil {
		_ = gz.Close()
		return fmt.Errorf("circuit: encode %s: %w", c.ID, err)
	}

	return gz.Close()
}

// SaveFile writes the circuit to path. The file is written under a temporary
// name in the same directory and renamed into place once complete.
func (c *Circuit) SaveFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := c.Save(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Load reads a circuit written by Save.
//
// The circuit is placed on the device recorded in the artifact unless
// WithDevice overrides it. An unavailable device is ErrDeviceUnavailable,
// or Host when WithHostFallback is given.
func Load(r io.Reader, opts ...LoadOption) (*Circuit, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifact, err)
	}
	defer gz.Close()

	var a artifact
	if err := gob.NewDecoder(gz).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifact, err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrArtifact, a.Version, artifactVersion)
	}

	o := loadOptions{device: a.Device}
	for _, opt := range opts {
		opt(&o)
	}
	device := o.device
	if !device.Available() {
		if !o.hostFallback {
			return nil, fmt.Errorf("%w: artifact %s requests %q, available: %q", ErrDeviceUnavailable, a.ID, device, Host)
		}
		device = Host
	}

	c := &Circuit{
		ID:       a.ID,
		NumVars:  a.NumVars,
		Device:   device,
		Layers:   a.Layers,
		nodes:    a.Nodes,
		root:     a.Root,
		sumW:     a.SumW,
		inParams: a.InParams,
	}
	for i, s := range a.Families {
		f, err := family.Lookup(s)
		if err != nil {
			return nil, fmt.Errorf("%w: family %d: %w", ErrArtifact, i, err)
		}
		c.families = append(c.families, f)
	}
	if err := c.checkOffsets(); err != nil {
		return nil, err
	}
	if err := c.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifact, err)
	}
	c.index()

	return c, nil
}

// LoadFile reads a circuit from path.
func LoadFile(path string, opts ...LoadOption) (*Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f, opts...)
}

// checkOffsets validates parameter offsets and allocates the flow buffers.
func (c *Circuit) checkOffsets() error {
	var stats int
	for id := range c.nodes {
		n := &c.nodes[id]
		switch n.Kind {
		case SumNode:
			if n.Param < 0 || n.Param+len(n.Children) > len(c.sumW) {
				return fmt.Errorf("%w: sum %d weights [%d,%d) exceed %d", ErrArtifact, id, n.Param, n.Param+len(n.Children), len(c.sumW))
			}
			if err := checkGroups(n.Groups, len(n.Children)); err != nil {
				return fmt.Errorf("%w: sum %d: %w", ErrArtifact, id, err)
			}
		case InputNode:
			if n.Family < 0 || n.Family >= len(c.families) {
				return fmt.Errorf("%w: input %d family %d of %d", ErrArtifact, id, n.Family, len(c.families))
			}
			f := c.families[n.Family]
			if n.Param < 0 || n.Stat < 0 || n.Param+f.NumParams() > len(c.inParams) {
				return fmt.Errorf("%w: input %d params exceed %d", ErrArtifact, id, len(c.inParams))
			}
			stats = max(stats, n.Stat+f.NumStats())
		}
	}
	c.sumFlows = make([]float64, len(c.sumW))
	c.inStats = make([]float64, stats)

	return nil
}

// checkGroups requires strictly increasing group ends whose last entry is
// the child count.
func checkGroups(groups []int, edges int) error {
	if len(groups) == 0 {
		return fmt.Errorf("no groups over %d edges", edges)
	}
	prev := 0
	for i, end := range groups {
		if end <= prev || end > edges {
			return fmt.Errorf("group %d ends at %d after %d, %d edges", i, end, prev, edges)
		}
		prev = end
	}
	if prev != edges {
		return fmt.Errorf("groups %v do not cover %d edges", groups, edges)
	}

	return nil
}
