package core

import (
	"errors"
	"fmt"
	"strings"
)

// Labels of the category taxonomy. The prefix heuristic in Categorize only
// ever produces three of them plus CategoryOther.
const (
	CategoryTerritorial       = "Territorial Unit"
	CategoryGeneralGovernment = "General Government Unit"
	CategorySupporting        = "Supporting Unit"
	CategoryOversight         = "Oversight Unit"
	CategoryAuxiliary         = "Auxiliary Unit"
	CategoryOptional          = "Optional Affairs"
	CategoryMandatoryService  = "Mandatory Service Affairs"
	CategoryMandatoryOther    = "Mandatory Non-Service Affairs"
	CategoryOther             = "Other"
)

const (
	ModeStatic   Mode = "static"
	ModeExternal Mode = "external"
)

type (
	// Mode is the outcome of source selection.
	Mode string

	CategoryRecord struct {
		Code           string `json:"code"`
		Label          string `json:"category"`
		Amount         Amount `json:"amount"`
		AmountBillions Amount `json:"amount_billions"`
	}

	// Department is one SKPD row.
	Department struct {
		Code           string `json:"code"`
		Name           string `json:"name"`
		Category       string `json:"category"`
		Amount         Amount `json:"amount"`
		AmountBillions Amount `json:"amount_billions"`
	}

	TrendRecord struct {
		Year           int    `json:"year"`
		Category       string `json:"category"`
		Amount         Amount `json:"amount"`
		AmountBillions Amount `json:"amount_billions"`
	}

	// Tables groups the three canonical tables of one pipeline run.
	Tables struct {
		Categories  []CategoryRecord
		Departments []Department
		Trend       []TrendRecord
	}
)

func (m Mode) String() string {
	return string(m)
}

// Clone returns a deep copy; records hold only values so copying the slices is enough.
func (t Tables) Clone() Tables {
	return Tables{
		Categories:  append([]CategoryRecord(nil), t.Categories...),
		Departments: append([]Department(nil), t.Departments...),
		Trend:       append([]TrendRecord(nil), t.Trend...),
	}
}

// ErrorKind classifies external source failures.
type ErrorKind int

const (
	KindConnection ErrorKind = iota + 1
	KindQuery
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

var (
	ErrConnection = errors.New("external source connection failed")
	ErrQuery      = errors.New("external source query failed")
)

// SourceError reports a failure talking to the external source. It matches
// ErrConnection or ErrQuery through errors.Is depending on Kind.
type SourceError struct {
	Kind    ErrorKind
	Driver  string
	Address string
	Op      string
	Err     error
}

func (e *SourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error", e.Kind)
	if e.Driver != "" {
		fmt.Fprintf(&b, " (%s", e.Driver)
		if e.Address != "" {
			fmt.Fprintf(&b, " %s", e.Address)
		}
		b.WriteString(")")
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " during %s", e.Op)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func (e *SourceError) Is(target error) bool {
	switch target {
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrQuery:
		return e.Kind == KindQuery
	}
	return false
}

// NoticeLevel mirrors the severities the dashboard can show.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible message produced while resolving the data source.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
}
