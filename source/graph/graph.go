package graph

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// The graph state document understood by the graphing calculator. Only the parts we can fill in
// are modelled; everything optional is omitted when empty.

const LatestStateVersion = 9

type CalcState struct {
	Version     int         `json:"version"`
	Graph       *Graph      `json:"graph,omitempty"`
	RandomSeed  string      `json:"randomSeed,omitempty"` // 32 hex characters.
	Expressions Expressions `json:"expressions"`
}

type Graph struct {
	Viewport Viewport `json:"viewport"`
}

type Viewport struct {
	Xmin float64 `json:"xmin"`
	Xmax float64 `json:"xmax"`
	Ymin float64 `json:"ymin"`
	Ymax float64 `json:"ymax"`
}

type Expressions struct {
	List   []Expression `json:"list"`
	Ticker *Ticker      `json:"ticker,omitempty"`
}

type Ticker struct {
	HandlerLatex string `json:"handlerLatex,omitempty"`
	MinStepLatex string `json:"minStepLatex,omitempty"`
	Open         *bool  `json:"open,omitempty"`
	Playing      *bool  `json:"playing,omitempty"`
}

// An Expression is one row of the expression list. Its value is flattened into the same JSON
// object, with a "type" field saying which kind of value it is.
type Expression struct {
	ID    string
	Value ExpressionValue
}

type ExpressionValue interface {
	ValueType() string
}

type LineStyle string

const (
	Solid  LineStyle = "SOLID"
	Dashed LineStyle = "DASHED"
	Dotted LineStyle = "DOTTED"
)

type ExpressionItem struct {
	Latex        string     `json:"latex,omitempty"`
	Color        string     `json:"color,omitempty"`
	Hidden       *bool      `json:"hidden,omitempty"`
	Secret       *bool      `json:"secret,omitempty"`
	LineStyle    *LineStyle `json:"lineStyle,omitempty"`
	LineWidth    string     `json:"lineWidth,omitempty"`
	LineOpacity  string     `json:"lineOpacity,omitempty"`
	PointSize    string     `json:"pointSize,omitempty"`
	FillOpacity  string     `json:"fillOpacity,omitempty"`
	Points       *bool      `json:"points,omitempty"`
	Lines        *bool      `json:"lines,omitempty"`
	Label        string     `json:"label,omitempty"`
	ShowLabel    *bool      `json:"showLabel,omitempty"`
	SliderBounds *Bounds    `json:"sliderBounds,omitempty"`
}

type Bounds struct {
	Min  string `json:"min"`
	Max  string `json:"max"`
	Step string `json:"step,omitempty"`
}

type Table struct {
	Columns []Column `json:"columns"`
}

type Column struct {
	Latex  string   `json:"latex"`
	Values []string `json:"values,omitempty"`
}

func (ExpressionItem) ValueType() string { return "expression" }
func (Table) ValueType() string          { return "table" }

func (e Expression) MarshalJSON() ([]byte, error) {
	if e.Value == nil {
		return nil, errors.Errorf("expression %q has no value", e.ID)
	}
	body, err := json.Marshal(e.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "marshalling expression %q", e.ID)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.Wrapf(err, "flattening expression %q", e.ID)
	}
	fields["id"], _ = json.Marshal(e.ID)
	fields["type"], _ = json.Marshal(e.Value.ValueType())
	return json.Marshal(fields)
}

func (e *Expression) UnmarshalJSON(data []byte) error {
	var head struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return errors.Wrap(err, "reading expression")
	}
	e.ID = head.ID
	switch head.Type {
	case "expression":
		item := ExpressionItem{}
		if err := json.Unmarshal(data, &item); err != nil {
			return errors.Wrapf(err, "reading expression %q", head.ID)
		}
		e.Value = item
	case "table":
		table := Table{}
		if err := json.Unmarshal(data, &table); err != nil {
			return errors.Wrapf(err, "reading table %q", head.ID)
		}
		e.Value = table
	default:
		return errors.Errorf("expression %q has unknown type %q", head.ID, head.Type)
	}
	return nil
}

func DefaultViewport() Viewport {
	return Viewport{Xmin: -10, Xmax: 10, Ymin: -10, Ymax: 10}
}

func New() *CalcState {
	return &CalcState{
		Version:     LatestStateVersion,
		Graph:       &Graph{Viewport: DefaultViewport()},
		Expressions: Expressions{List: []Expression{}},
	}
}

// Makes a graph state with one expression per string, numbered from 0.
func FromLatexStrings(lines []string) *CalcState {
	state := New()
	for i, l := range lines {
		state.Expressions.List = append(state.Expressions.List, Expression{ID: strconv.Itoa(i), Value: ExpressionItem{Latex: l}})
	}
	return state
}

func (cs *CalcState) WithViewport(v Viewport) *CalcState {
	cs.Graph = &Graph{Viewport: v}
	return cs
}

// Derives the random seed from the source, so that building the same program twice gives the
// same document.
func (cs *CalcState) WithSeed(source string) *CalcState {
	cs.RandomSeed = SeedFrom(source)
	return cs
}

func (cs *CalcState) WithRandomSeed() *CalcState {
	cs.RandomSeed = NewRandomSeed()
	return cs
}

func SeedFrom(source string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

func NewRandomSeed() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Returns the LaTeX of each expression in order, skipping tables.
func (cs *CalcState) Latex() []string {
	result := []string{}
	for _, e := range cs.Expressions.List {
		if item, ok := e.Value.(ExpressionItem); ok {
			result = append(result, item.Latex)
		}
	}
	return result
}

func (cs *CalcState) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(cs, "", "  ")
	return data, errors.Wrap(err, "marshalling graph state")
}

func Unmarshal(data []byte) (*CalcState, error) {
	state := &CalcState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, errors.Wrap(err, "unmarshalling graph state")
	}
	if state.Version != LatestStateVersion {
		return nil, errors.Errorf("graph state has version %d, expected %d", state.Version, LatestStateVersion)
	}
	return state, nil
}
