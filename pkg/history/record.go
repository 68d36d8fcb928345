package history

import (
	"time"

	"github.com/google/uuid"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// NewRecord builds a record for one parse of data. Exactly one of rs and
// err is expected to be non-nil.
func NewRecord(origin, source string, data []byte, rs *ast.RuleSet, err error, duration time.Duration) *Record {
	record := &Record{
		ID:           uuid.New().String(),
		RecordedAt:   time.Now().UTC(),
		Origin:       origin,
		Source:       source,
		DocumentHash: HashContent(data),
		Bytes:        len(data),
		Result:       ResultOK,
		Duration:     duration,
	}

	if err != nil {
		record.Result = ResultError
		record.ErrorMessage = err.Error()
		var perr *simErrors.Error
		if simErrors.As(err, &perr) {
			record.ErrorType = string(perr.Type)
			record.ErrorLine = perr.Line()
			record.ErrorMessage = perr.Message
		} else {
			record.ErrorType = string(simErrors.ErrorTypeIO)
		}
		return record
	}

	if rs != nil {
		record.Rules = rs.Len()
		for _, rule := range rs.Rules {
			record.Binds += len(rule.Binds)
		}
	}
	return record
}

// WithRequestID sets the request id and returns the record.
func (r *Record) WithRequestID(id string) *Record {
	r.RequestID = id
	return r
}
