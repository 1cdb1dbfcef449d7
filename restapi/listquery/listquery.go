// Package listquery translates URL query strings into filtered, field
// selected, sorted and paginated AQL reads against a collection, and attaches
// the resulting pagination envelope to the request for the handler to emit.
//
// Reserved keys are select, sort, page and limit. Every other key is treated
// as a filter on a same-named document field, either plain equality
// (city=Boston) or a comparison written as field[op]=value with op one of
// gt, gte, lt, lte, in. Each pair is parsed into a typed {field, op, value}
// triple and compiled with bind vars, so filter values can never collide with
// operator tokens or leak into the query text. Values coerced to a number or
// bool keep their string form as an equality alternative, since the document
// field may itself be string-typed.
package listquery

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
)

const (
	localsKey    = "listResults"
	defaultPage  = 1
	defaultLimit = 25
)

// Op is a comparison operator in a filter triple
type Op string

// Supported filter operators
const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

var opAQL = map[Op]string{
	OpEq:  "==",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
	OpIn:  "IN",
}

// Filter is one typed comparison against a document field. Raw carries the
// original query text when Value was coerced away from a string; equality
// compiles it as an alternative so string-typed fields still match.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
	Raw   string
}

// SortKey orders results by one field
type SortKey struct {
	Field string
	Desc  bool
}

// Params is the parsed form of a list query string
type Params struct {
	Filters []Filter
	Fields  []string
	Sort    []SortKey
	Page    int
	Limit   int
}

// Expand inlines related documents into each result. Exactly one of LocalRef
// and ForeignRef is set: LocalRef names the field on the listed document that
// holds the related key (to-one), ForeignRef names the field on the related
// documents that points back (to-many).
type Expand struct {
	Collection string
	As         string
	LocalRef   string
	ForeignRef string
	Project    []string
}

// Options configures the middleware for one collection
type Options struct {
	Expand *Expand
	Omit   []string // fields stripped from every result (credential hashes)
}

// Page describes one page in the pagination envelope
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination holds the neighbor pages when they exist
type Pagination struct {
	Prev *Page `json:"prev,omitempty"`
	Next *Page `json:"next,omitempty"`
}

// Result is the envelope emitted verbatim by list handlers
type Result struct {
	Success    bool                     `json:"success"`
	Pagination Pagination               `json:"pagination"`
	Count      int                      `json:"count"`
	Data       []map[string]interface{} `json:"data"`
}

var (
	filterKeyRe = regexp.MustCompile(`^([A-Za-z0-9_.]+)\[(gt|gte|lt|lte|in)\]$`)
	fieldNameRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

// Parse converts raw query parameters into Params. Non-numeric page or limit
// values fall back silently to the defaults, and keys that are not valid
// field names are dropped rather than rejected.
func Parse(query map[string]string) Params {
	p := Params{Page: defaultPage, Limit: defaultLimit}

	for key, raw := range query {
		switch key {
		case "select":
			for _, f := range strings.Split(raw, ",") {
				f = strings.TrimSpace(f)
				if fieldNameRe.MatchString(f) {
					p.Fields = append(p.Fields, f)
				}
			}
		case "sort":
			for _, f := range strings.Split(raw, ",") {
				f = strings.TrimSpace(f)
				desc := strings.HasPrefix(f, "-")
				f = strings.TrimPrefix(f, "-")
				if fieldNameRe.MatchString(f) {
					p.Sort = append(p.Sort, SortKey{Field: f, Desc: desc})
				}
			}
		case "page":
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				p.Page = n
			}
		case "limit":
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				p.Limit = n
			}
		default:
			if m := filterKeyRe.FindStringSubmatch(key); m != nil {
				op := Op(m[2])
				if op == OpIn {
					// Membership is equality against each element, so coerced
					// values keep their string form in the list too.
					values := make([]interface{}, 0, 4)
					alts := make([]interface{}, 0, 4)
					for _, v := range strings.Split(raw, ",") {
						v = strings.TrimSpace(v)
						tv := typedValue(v)
						values = append(values, tv)
						if _, ok := tv.(string); !ok {
							alts = append(alts, v)
						}
					}
					p.Filters = append(p.Filters, Filter{Field: m[1], Op: OpIn, Value: append(values, alts...)})
				} else {
					p.Filters = append(p.Filters, Filter{Field: m[1], Op: op, Value: typedValue(raw)})
				}
			} else if fieldNameRe.MatchString(key) {
				f := Filter{Field: key, Op: OpEq, Value: typedValue(raw)}
				if _, ok := f.Value.(string); !ok {
					f.Raw = raw
				}
				p.Filters = append(p.Filters, f)
			}
		}
	}

	// Query maps have no stable iteration order; keep the compiled AQL
	// deterministic.
	sort.Slice(p.Filters, func(i, j int) bool {
		if p.Filters[i].Field != p.Filters[j].Field {
			return p.Filters[i].Field < p.Filters[j].Field
		}
		return p.Filters[i].Op < p.Filters[j].Op
	})

	return p
}

// typedValue converts a raw query value into the natural AQL type
func typedValue(raw string) interface{} {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// Skip returns the number of documents skipped before the requested page
func (p Params) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Compile renders Params into an AQL query plus its bind vars
func (p Params) Compile(collection string, opts Options) (string, map[string]interface{}) {
	var b strings.Builder
	bind := map[string]interface{}{}

	fmt.Fprintf(&b, "FOR doc IN %s\n", collection)

	for i, f := range p.Filters {
		name := fmt.Sprintf("v%d", i)
		bind[name] = f.Value

		// Coerced equality also matches the string form, since the document
		// field may be string-typed (weeks=8 against a string weeks field).
		if f.Op == OpEq && f.Raw != "" {
			alt := name + "s"
			bind[alt] = f.Raw
			fmt.Fprintf(&b, "  FILTER doc.%s == @%s OR doc.%s == @%s\n", f.Field, name, f.Field, alt)
			continue
		}

		fmt.Fprintf(&b, "  FILTER doc.%s %s @%s\n", f.Field, opAQL[f.Op], name)
	}

	if len(p.Sort) == 0 {
		b.WriteString("  SORT doc.created_at DESC\n")
	} else {
		keys := make([]string, 0, len(p.Sort))
		for _, s := range p.Sort {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			keys = append(keys, fmt.Sprintf("doc.%s %s", s.Field, dir))
		}
		fmt.Fprintf(&b, "  SORT %s\n", strings.Join(keys, ", "))
	}

	fmt.Fprintf(&b, "  LIMIT %d, %d\n", p.Skip(), p.Limit)

	ret := "doc"
	switch {
	case len(p.Fields) > 0:
		bind["keep"] = append([]string{"_key"}, p.Fields...)
		ret = "KEEP(doc, @keep)"
	case len(opts.Omit) > 0:
		bind["omit"] = opts.Omit
		ret = "UNSET(doc, @omit)"
	}

	if opts.Expand != nil {
		ret = compileExpand(&b, bind, opts.Expand, ret)
	}

	fmt.Fprintf(&b, "  RETURN %s\n", ret)

	return b.String(), bind
}

func compileExpand(b *strings.Builder, bind map[string]interface{}, exp *Expand, ret string) string {
	proj := "rel"
	if len(exp.Project) > 0 {
		bind["expkeep"] = append([]string{"_key"}, exp.Project...)
		proj = "KEEP(rel, @expkeep)"
	}

	if exp.ForeignRef != "" {
		fmt.Fprintf(b, "  LET expanded = (FOR rel IN %s FILTER rel.%s == doc._key RETURN %s)\n",
			exp.Collection, exp.ForeignRef, proj)
	} else {
		fmt.Fprintf(b, "  LET expanded = FIRST(FOR rel IN %s FILTER rel._key == doc.%s RETURN %s)\n",
			exp.Collection, exp.LocalRef, proj)
	}

	return fmt.Sprintf("MERGE(%s, {%s: expanded})", ret, exp.As)
}

// Envelope builds the pagination envelope for one page of results. The total
// is the unfiltered collection size, matching the long-standing behavior
// consumers depend on; prev appears only past page one, next only while
// page*limit is below the total.
func (p Params) Envelope(total int, data []map[string]interface{}) *Result {
	if data == nil {
		data = []map[string]interface{}{}
	}

	pagination := Pagination{}
	if p.Page*p.Limit < total {
		pagination.Next = &Page{Page: p.Page + 1, Limit: p.Limit}
	}
	if p.Page > 1 {
		pagination.Prev = &Page{Page: p.Page - 1, Limit: p.Limit}
	}

	return &Result{
		Success:    true,
		Pagination: pagination,
		Count:      len(data),
		Data:       data,
	}
}

// New builds the middleware for one collection. It runs the translated read,
// stores the envelope on the request, and hands control to the handler, which
// emits it verbatim.
func New(db database.DBConnection, collection string, opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := Parse(c.Queries())
		query, bind := params.Compile(collection, opts)

		ctx := c.Context()

		total, err := database.CountDocuments(ctx, db.Database, collection)
		if err != nil {
			return apperr.Internal("Failed to count %s", collection)
		}

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bind})
		if err != nil {
			return apperr.Internal("Failed to query %s", collection)
		}
		defer cursor.Close()

		data := make([]map[string]interface{}, 0, params.Limit)
		for cursor.HasMore() {
			var doc map[string]interface{}
			if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
				return apperr.Internal("Failed to read %s", collection)
			}
			data = append(data, doc)
		}

		c.Locals(localsKey, params.Envelope(total, data))
		return c.Next()
	}
}

// FromContext returns the envelope attached by New, or nil when the route was
// not wired through the middleware.
func FromContext(c *fiber.Ctx) *Result {
	res, _ := c.Locals(localsKey).(*Result)
	return res
}
