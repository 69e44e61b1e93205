package render

// Kind tells tables and charts apart.
type Kind string

const (
	KindTable Kind = "table"
	KindChart Kind = "chart"
)

// Artifact is one table or chart produced from a payload field.
type Artifact interface {
	ArtifactKind() Kind
}

// Table is a rendered table description. Header rows may use spans; body
// rows marked Section are group headings spanning the whole table.
type Table struct {
	ID     string         `json:"id"`
	Title  string         `json:"title,omitempty"`
	Header [][]HeaderCell `json:"header"`
	Rows   []Row          `json:"rows"`
}

type HeaderCell struct {
	Text string `json:"text"`
	Span int    `json:"span,omitempty"`
}

type Row struct {
	Cells   []Cell `json:"cells"`
	Section bool   `json:"section,omitempty"`
}

type Cell struct {
	Text string `json:"text"`
	Span int    `json:"span,omitempty"`
}

func (*Table) ArtifactKind() Kind { return KindTable }

// ColumnCount is the width of the table, taken from its first header row.
func (t *Table) ColumnCount() int {
	if len(t.Header) == 0 {
		return 0
	}
	n := 0
	for _, c := range t.Header[0] {
		n += span(c.Span)
	}
	return n
}

func span(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
)

// Chart is a declarative chart spec handed to the charting capability.
type Chart struct {
	ID          string    `json:"id"`
	Type        ChartType `json:"type"`
	Title       string    `json:"title"`
	Labels      []string  `json:"labels"`
	Datasets    []Dataset `json:"datasets"`
	XTitle      string    `json:"x_title"`
	YTitle      string    `json:"y_title"`
	BeginAtZero bool      `json:"begin_at_zero"`
}

// Dataset is one series. Nil points are gaps.
type Dataset struct {
	Label   string     `json:"label"`
	Data    []*float64 `json:"data"`
	Color   string     `json:"color"`
	Dashed  bool       `json:"dashed,omitempty"`
	Tension float64    `json:"tension,omitempty"`
}

func (*Chart) ArtifactKind() Kind { return KindChart }
