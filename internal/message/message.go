package message

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Message type tags found in the simulation trace stream.
const (
	TagRequest = "10"
	TagRead    = "14"
	TagWrite   = "18"
)

// ErrMalformedRecord is returned when a payload carries a known tag but
// does not have the token count that tag requires.
var ErrMalformedRecord = errors.New("malformed record")

// The payload must close the line: "message: <...>" followed by nothing but
// an optional carriage return.
var messagePattern = regexp.MustCompile(`message: (<.+>)\r?$`)

// rule describes how one tag is laid out. Positions index into the token
// list after splitting the payload on ':'.
type rule struct {
	kind   string
	tokens int
	agent  int
	fields []int
}

// Token layouts:
//
//	10: tag origin dest ts count hops id agent _ r1x r1y r2x r2y nth map
//	14: tag origin dest ts count hops id agent _ ssvid
//	18: tag origin dest ts count hops id agent _ ssvid vtype px py
var rules = map[string]rule{
	TagRequest: {kind: "request", tokens: 15, agent: 7, fields: []int{0, 3, 9, 10, 11, 12}},
	TagRead:    {kind: "read", tokens: 10, agent: 7, fields: []int{0, 3, 9}},
	TagWrite:   {kind: "write", tokens: 13, agent: 7, fields: []int{0, 3, 9, 11, 12}},
}

// MalformedRecordError carries the offending payload of a record whose
// token count does not match its tag.
type MalformedRecordError struct {
	Tag      string
	Expected int
	Actual   int
	Payload  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: tag %s expects %d fields, got %d in %q",
		ErrMalformedRecord, e.Tag, e.Expected, e.Actual, e.Payload)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Record is the extracted form of one embedded message.
type Record struct {
	Agent  string
	Kind   string
	Fields []string
}

// Empty reports whether the payload was skipped (unrecognized tag).
func (r Record) Empty() bool {
	return len(r.Fields) == 0
}

// Text returns the output line without its trailing newline.
func (r Record) Text() string {
	return strings.Join(r.Fields, ",")
}

// Match returns the bracketed payload of a "message: <...>" line,
// including the angle brackets.
func Match(line string) (string, bool) {
	m := messagePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Extract classifies a payload by its tag and picks the fields for that tag.
// Unknown tags yield an empty Record and no error.
func Extract(payload string) (Record, error) {
	cleaned := strings.NewReplacer("<", "", ">", "").Replace(payload)
	tokens := strings.Split(cleaned, ":")

	r, ok := rules[tokens[0]]
	if !ok {
		return Record{}, nil
	}
	if len(tokens) != r.tokens {
		return Record{}, &MalformedRecordError{
			Tag:      tokens[0],
			Expected: r.tokens,
			Actual:   len(tokens),
			Payload:  payload,
		}
	}

	fields := make([]string, len(r.fields))
	for i, pos := range r.fields {
		fields[i] = tokens[pos]
	}
	return Record{
		Agent:  tokens[r.agent],
		Kind:   r.kind,
		Fields: fields,
	}, nil
}

// Kinds lists the record kinds in tag order.
func Kinds() []string {
	return []string{rules[TagRequest].kind, rules[TagRead].kind, rules[TagWrite].kind}
}
