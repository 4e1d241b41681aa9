// Package reporter is the error-tracking side channel of the palette.
//
// Reports never block the search pipeline: they are logged immediately and
// persisted, when a sink is configured, from a background goroutine.
package reporter

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/storage"
)

// OrgPlaceholder replaces organization slugs in reported URLs so error
// tracking groups the same failure across organizations.
const OrgPlaceholder = ":orgId"

// Sink persists reports. *storage.DB satisfies it.
type Sink interface {
	RecordReport(r storage.ErrorReport) error
}

// Reporter records errors. The zero value is not usable; use New.
type Reporter struct {
	sink   Sink
	logger *log.Logger
	wg     sync.WaitGroup
	now    func() time.Time
}

// New returns a reporter. sink may be nil to only log.
func New(sink Sink) *Reporter {
	return &Reporter{
		sink:   sink,
		logger: log.ForService("reporter"),
		now:    time.Now,
	}
}

// Report records err with the given context and returns the report id.
func (r *Reporter) Report(err error, context map[string]string) string {
	if err == nil {
		return ""
	}

	report := storage.ErrorReport{
		ID:        uuid.NewString(),
		Message:   err.Error(),
		Context:   copyContext(context),
		CreatedAt: r.now(),
	}

	kv := make([]any, 0, 2*len(report.Context)+2)
	kv = append(kv, "report", report.ID)
	for k, v := range report.Context {
		kv = append(kv, k, v)
	}
	r.logger.With(kv...).Errorf("%s", report.Message)

	if r.sink != nil {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := r.sink.RecordReport(report); err != nil {
				r.logger.Warnf("persisting report %s: %v", report.ID, err)
			}
		}()
	}
	return report.ID
}

// Wait blocks until pending reports are persisted.
func (r *Reporter) Wait() {
	r.wg.Wait()
}

func copyContext(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// RedactURL replaces every path segment equal to orgSlug with the
// organization placeholder.
//
//	RedactURL("/organizations/acme/projects/", "acme") // "/organizations/:orgId/projects/"
func RedactURL(url, orgSlug string) string {
	if orgSlug == "" {
		return url
	}

	path, query, hasQuery := strings.Cut(url, "?")
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == orgSlug {
			segments[i] = OrgPlaceholder
		}
	}
	redacted := strings.Join(segments, "/")
	if hasQuery {
		redacted += "?" + query
	}
	return redacted
}
