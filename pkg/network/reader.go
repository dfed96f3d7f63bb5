package network

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph"
)

// Format identifies a graph file format
type Format string

const (
	FormatAuto     Format = "auto"
	FormatEdgeList Format = "edgelist"
	FormatGML      Format = "gml"
	FormatDOT      Format = "dot"
	FormatGraph6   Format = "graph6"
)

// DetectFormat infers the format from a file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".edgelist", ".edges", ".el":
		return FormatEdgeList, nil
	case ".gml":
		return FormatGML, nil
	case ".dot", ".gv":
		return FormatDOT, nil
	case ".g6", ".graph6":
		return FormatGraph6, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatEdgeList, FormatGML, FormatDOT, FormatGraph6:
		return f, nil
	case "txt", "edges":
		return FormatEdgeList, nil
	case "g6":
		return FormatGraph6, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Load reads a graph file. With FormatAuto the format is taken from the
// file extension. The graph is named after the file's base name.
func Load(path string, format Format) (*Graph, error) {
	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file %s: %w", path, err)
	}
	defer file.Close()

	g, err := Read(file, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return g, nil
}

// Read parses a graph in the given format from r
func Read(r io.Reader, format Format) (*Graph, error) {
	switch format {
	case FormatEdgeList:
		return ReadEdgeList(r)
	case FormatGML:
		return ReadGML(r)
	case FormatDOT:
		return ReadDOT(r)
	case FormatGraph6:
		return ReadGraph6(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadEdgeList parses whitespace separated "u v" lines. Node identifiers
// are arbitrary tokens indexed in order of first appearance; columns after
// the second are ignored, as are blank lines and lines starting with # or %.
func ReadEdgeList(r io.Reader) (*Graph, error) {
	b := newLabelBuilder()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected two node ids, got %q", ErrMalformedInput, lineNum, line)
		}
		b.edge(parts[0], parts[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading edge list: %w", err)
	}

	return b.build(), nil
}

// labelBuilder collects labelled edges before the node count is known
type labelBuilder struct {
	index  map[string]int
	labels []string
	edges  [][2]int
}

func newLabelBuilder() *labelBuilder {
	return &labelBuilder{index: make(map[string]int)}
}

func (b *labelBuilder) node(label string) int {
	if i, ok := b.index[label]; ok {
		return i
	}
	i := len(b.labels)
	b.index[label] = i
	b.labels = append(b.labels, label)
	return i
}

func (b *labelBuilder) edge(u, v string) {
	b.edges = append(b.edges, [2]int{b.node(u), b.node(v)})
}

func (b *labelBuilder) build() *Graph {
	g := NewLabelledGraph(b.labels)
	for _, e := range b.edges {
		// indices come from node(), so they are always in range
		g.AddEdge(e[0], e[1])
	}
	return g
}

// WriteEdgeList writes one "u v" line per edge using node labels
func WriteEdgeList(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		if _, err := fmt.Fprintf(bw, "%s %s\n", g.Label(e[0]), g.Label(e[1])); err != nil {
			return fmt.Errorf("failed to write edge: %w", err)
		}
	}
	return bw.Flush()
}

// SaveEdgeList writes the graph to path as an edge list
func SaveEdgeList(path string, g *Graph) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteEdgeList(file, g); err != nil {
		return err
	}
	return file.Close()
}

// Save writes the graph to path in the given format. FormatAuto picks the
// format from the extension. GML output is not supported.
func Save(path string, g *Graph, format Format) error {
	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return err
		}
		format = detected
	}

	switch format {
	case FormatEdgeList:
		return SaveEdgeList(path, g)
	case FormatDOT:
		return SaveDOT(path, g)
	case FormatGraph6:
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()
		if err := WriteGraph6(file, g); err != nil {
			return err
		}
		return file.Close()
	default:
		return fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, format)
	}
}

func sortedIDs(nodes []graph.Node) []int64 {
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
