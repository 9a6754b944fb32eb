// Package view renders the event list into an HTML table.
//
// The table lives in a server-held node tree parsed from a host page, one tree
// per UI session. Rows are switched between display and edit mode in place and
// the whole page is written out on every response.
package view

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// Host page contract.
const (
	ListID      = "event-list"
	AddButtonID = "add-event-btn"
	WarningID   = "event-warning"
	CSRFFieldID = "csrf-token"
)

// Control classes. Every button posts "click=<row id>:<control>"; the add
// button posts "click=add".
const (
	ControlAdd     = "add"
	ControlSave    = "save"
	ControlDiscard = "discard"
	ControlEdit    = "edit"
	ControlDelete  = "delete"
)

// Input fields of a row, in cell order.
const (
	FieldName  = "name"
	FieldStart = "start"
	FieldEnd   = "end"
)

// Fields lists the editable fields in cell order.
var Fields = [3]string{FieldName, FieldStart, FieldEnd}

// DraftID is the placeholder id of a row that has not been saved yet.
const DraftID models.EventID = "new"

const rowIDPrefix = "event-"

var (
	// ErrMissingNode means the host page lacks a node the table requires.
	ErrMissingNode = errors.New("host page is missing a required node")

	// ErrNoRow means no row carries the requested id.
	ErrNoRow = errors.New("no such row")

	// ErrRowState means the row is not in a state that allows the operation.
	ErrRowState = errors.New("row is in the wrong state")
)

//go:embed page.html
var defaultPage []byte

// RowState is the mode a table row is in.
type RowState int

const (
	StateDisplay RowState = iota
	StateNewDraft
	StateEditing
)

func (s RowState) String() string {
	switch s {
	case StateDisplay:
		return "display"
	case StateNewDraft:
		return "new-draft"
	case StateEditing:
		return "editing"
	default:
		return fmt.Sprintf("RowState(%d)", int(s))
	}
}

// RowDOMID returns the element id of the row for an event id. An empty id
// maps to the draft row.
func RowDOMID(id models.EventID) string {
	if id == "" {
		id = DraftID
	}
	return rowIDPrefix + id.String()
}

// ParseRowDOMID recovers the event id from a row element id.
// Ids may themselves contain dashes, so only the prefix is stripped.
func ParseRowDOMID(domID string) (models.EventID, bool) {
	id, ok := strings.CutPrefix(domID, rowIDPrefix)
	if !ok || id == "" {
		return "", false
	}
	return models.EventID(id), true
}

// InputName is the form field name of one input in a row.
func InputName(domID, field string) string {
	return domID + "." + field
}

type row struct {
	state    RowState
	original models.Event // pre-edit values while editing
}

// Table owns the host page tree and the rows of the event list.
type Table struct {
	mu sync.Mutex

	doc       *html.Node
	eventList *html.Node
	addButton *html.Node
	warning   *html.Node
	csrfField *html.Node

	rows map[*html.Node]*row
}

// NewTable parses the host page and locates the table body and add button.
// Both must exist; a missing node is a configuration error.
func NewTable(page io.Reader) (*Table, error) {
	doc, err := html.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("parsing host page: %w", err)
	}

	t := &Table{
		doc:       doc,
		eventList: findByID(doc, ListID),
		addButton: findByID(doc, AddButtonID),
		warning:   findByID(doc, WarningID),
		csrfField: findByID(doc, CSRFFieldID),
		rows:      make(map[*html.Node]*row),
	}

	if t.eventList == nil {
		return nil, fmt.Errorf("%w: #%s", ErrMissingNode, ListID)
	}
	if t.addButton == nil {
		return nil, fmt.Errorf("%w: #%s", ErrMissingNode, AddButtonID)
	}

	return t, nil
}

// NewDefaultTable builds a table on the embedded host page.
func NewDefaultTable() (*Table, error) {
	return NewTable(bytes.NewReader(defaultPage))
}

// RenderEvents clears all rows and appends one display row per event, in order.
func (t *Table) RenderEvents(events []models.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	removeChildren(t.eventList)
	clear(t.rows)
	for _, e := range events {
		t.appendRow(e, false)
	}
}

// AddEvent appends a single row. A new row gets three empty inputs and the
// draft placeholder id; otherwise the event is shown as plain text.
// Only one draft row is expected at a time.
func (t *Table) AddEvent(event models.Event, isNew bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendRow(event, isNew)
}

// RemoveEvent detaches the row for id. It is a no-op if there is none.
func (t *Table) RemoveEvent(id models.EventID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := t.rowNode(RowDOMID(id))
	if tr == nil {
		return
	}
	t.eventList.RemoveChild(tr)
	delete(t.rows, tr)
}

// RowState reports the state of the row with the given element id.
func (t *Table) RowState(domID string) (RowState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := t.rowNode(domID)
	if tr == nil {
		return 0, false
	}
	return t.rows[tr].state, true
}

// EditRow switches a display row into inputs holding its current values and
// stashes those values so a discard can restore them verbatim.
func (t *Table) EditRow(domID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := t.rowNode(domID)
	if tr == nil {
		return fmt.Errorf("%w: %s", ErrNoRow, domID)
	}
	r := t.rows[tr]
	if r.state != StateDisplay {
		return fmt.Errorf("%w: %s is %s", ErrRowState, domID, r.state)
	}

	cells := elementChildren(tr, atom.Td)
	if len(cells) < len(Fields) {
		return fmt.Errorf("%w: %s has %d cells", ErrRowState, domID, len(cells))
	}

	original := models.Event{
		Name:  textContent(cells[0]),
		Start: textContent(cells[1]),
		End:   textContent(cells[2]),
	}
	original.ID, _ = ParseRowDOMID(domID)

	removeChildren(tr)
	appendAll(tr, inputCells(domID, original, "Save")...)
	r.state = StateEditing
	r.original = original
	setAttr(tr, "data-state", r.state.String())
	return nil
}

// DisplayRow re-renders a row in display mode with event's fields. If event
// carries an id, the row is retagged with it; this is how a saved draft takes
// its backend id.
func (t *Table) DisplayRow(domID string, event models.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := t.rowNode(domID)
	if tr == nil {
		return fmt.Errorf("%w: %s", ErrNoRow, domID)
	}

	newID := domID
	if event.ID != "" {
		newID = RowDOMID(event.ID)
	}
	setAttr(tr, "id", newID)
	removeChildren(tr)
	appendAll(tr, displayCells(newID, event)...)

	r := t.rows[tr]
	r.state = StateDisplay
	r.original = models.Event{}
	setAttr(tr, "data-state", r.state.String())
	return nil
}

// SyncInputs copies posted values into the inputs of draft and editing rows,
// so a re-render keeps what was typed in rows other than the clicked one.
// Fields missing from form are left alone. Drafts share input names; their
// posted values are matched to them in document order.
func (t *Table) SyncInputs(form url.Values) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := map[string]int{}
	for _, tr := range elementChildren(t.eventList, atom.Tr) {
		r, tracked := t.rows[tr]
		if !tracked || r.state == StateDisplay {
			continue
		}
		for _, td := range elementChildren(tr, atom.Td) {
			in := findByAtom(td, atom.Input)
			if in == nil {
				continue
			}
			name, _ := getAttr(in, "name")
			values := form[name]
			n := seen[name]
			seen[name]++
			if n < len(values) {
				setAttr(in, "value", values[n])
			}
		}
	}
}

// Stashed returns the pre-edit values of a row in edit mode.
func (t *Table) Stashed(domID string) (models.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := t.rowNode(domID)
	if tr == nil || t.rows[tr].state != StateEditing {
		return models.Event{}, false
	}
	return t.rows[tr].original, true
}

// RowIDs returns the element ids of all rows in table order.
func (t *Table) RowIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ids []string
	for _, tr := range elementChildren(t.eventList, atom.Tr) {
		id, _ := getAttr(tr, "id")
		ids = append(ids, id)
	}
	return ids
}

// Cells returns what a row shows for name, start and end: the text of
// display cells or the values of inputs.
func (t *Table) Cells(domID string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := t.rowNode(domID)
	if tr == nil {
		return nil, false
	}

	var out []string
	for i, td := range elementChildren(tr, atom.Td) {
		if i >= len(Fields) {
			break
		}
		if in := findByAtom(td, atom.Input); in != nil {
			v, _ := getAttr(in, "value")
			out = append(out, v)
			continue
		}
		out = append(out, textContent(td))
	}
	return out, true
}

// Controls returns the control classes of the buttons in a row.
func (t *Table) Controls(domID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := t.rowNode(domID)
	if tr == nil {
		return nil
	}

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Button {
			class, _ := getAttr(n, "class")
			out = append(out, class)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tr)
	return out
}

// Warn shows a blocking warning above the table.
func (t *Table) Warn(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.warning == nil {
		body := findByAtom(t.doc, atom.Body)
		if body == nil {
			return
		}
		t.warning = element(atom.Div, "id", WarningID, "role", "alert")
		body.InsertBefore(t.warning, body.FirstChild)
	}
	removeChildren(t.warning)
	t.warning.AppendChild(text(message))
	removeAttr(t.warning, "hidden")
}

// Warning returns the text of the current warning, if one is shown.
func (t *Table) Warning() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.warning == nil {
		return ""
	}
	if _, hidden := getAttr(t.warning, "hidden"); hidden {
		return ""
	}
	return textContent(t.warning)
}

// ClearWarning hides the warning.
func (t *Table) ClearWarning() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.warning == nil {
		return
	}
	removeChildren(t.warning)
	setAttr(t.warning, "hidden", "")
}

// Render writes the whole page. csrfToken, when non-empty, is placed in the
// form's hidden token field.
func (t *Table) Render(w io.Writer, csrfToken string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.csrfField != nil {
		setAttr(t.csrfField, "value", csrfToken)
	}
	return html.Render(w, t.doc)
}

// rowNode finds the first row with the given element id, like getElementById.
func (t *Table) rowNode(domID string) *html.Node {
	for _, tr := range elementChildren(t.eventList, atom.Tr) {
		if id, _ := getAttr(tr, "id"); id == domID {
			if _, tracked := t.rows[tr]; tracked {
				return tr
			}
		}
	}
	return nil
}

func (t *Table) appendRow(event models.Event, isNew bool) {
	var tr *html.Node
	r := &row{state: StateDisplay}

	if isNew {
		domID := RowDOMID(DraftID)
		r.state = StateNewDraft
		tr = element(atom.Tr, "id", domID, "data-state", r.state.String())
		appendAll(tr, inputCells(domID, models.Event{}, "+")...)
	} else {
		domID := RowDOMID(event.ID)
		tr = element(atom.Tr, "id", domID, "data-state", r.state.String())
		appendAll(tr, displayCells(domID, event)...)
	}

	t.eventList.AppendChild(tr)
	t.rows[tr] = r
}

func displayCells(domID string, event models.Event) []*html.Node {
	return []*html.Node{
		appendAll(element(atom.Td), text(event.Name)),
		appendAll(element(atom.Td), text(event.Start)),
		appendAll(element(atom.Td), text(event.End)),
		appendAll(element(atom.Td),
			button(domID, ControlEdit, "Edit"),
			button(domID, ControlDelete, "Delete"),
		),
	}
}

// inputCells builds the edit-mode cells. A draft gets empty inputs with a
// placeholder on the name.
func inputCells(domID string, event models.Event, saveLabel string) []*html.Node {
	name := element(atom.Input, "type", "text", "name", InputName(domID, FieldName))
	if event.Name == "" && event.Start == "" && event.End == "" {
		setAttr(name, "placeholder", "Event Name")
	} else {
		setAttr(name, "value", event.Name)
	}
	start := element(atom.Input, "type", "date", "name", InputName(domID, FieldStart), "value", event.Start)
	end := element(atom.Input, "type", "date", "name", InputName(domID, FieldEnd), "value", event.End)

	return []*html.Node{
		appendAll(element(atom.Td), name),
		appendAll(element(atom.Td), start),
		appendAll(element(atom.Td), end),
		appendAll(element(atom.Td),
			button(domID, ControlSave, saveLabel),
			button(domID, ControlDiscard, "X"),
		),
	}
}

func button(domID, control, label string) *html.Node {
	b := element(atom.Button,
		"type", "submit",
		"class", control,
		"name", "click",
		"value", domID+":"+control,
		"formnovalidate", "",
	)
	b.AppendChild(text(label))
	return b
}
