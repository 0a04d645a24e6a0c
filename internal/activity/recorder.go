// internal/activity/recorder.go
//
// Builds and persists audit records.
//
// Context
// -------
// The pipeline calls Build once per request, pre-action, then hands the
// record to Store.Insert.  A write failure is logged and counted but never
// aborts the visitor's request: audit logging is best-effort, not part of
// the request's success contract.
//
// The lesson descriptor joins course/lesson/content slug parameters with a
// comma, and only exists when a course slug is present; a bare content
// slug is recorded on its own in Slug.
package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/atrium/internal/auth"
	"github.com/yanizio/atrium/internal/requestinfo"
	"github.com/yanizio/atrium/internal/session"
)

//
// Build
//

// Build assembles a Record from the request's ambient state.  component
// and action identify the code that will handle the request.
func Build(r *http.Request, sess session.State, hasSession bool, component, action string) *Record {
	rec := &Record{
		Browser:   r.UserAgent(),
		IPAddress: r.RemoteAddr,
		Component: component,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}

	// Who is doing the activity?
	if hasSession {
		rec.SessionID = sql.NullString{String: sess.SID, Valid: true}
	}
	if u := auth.CurrentUser(r.Context()); u != nil {
		rec.UserID = sql.NullInt64{Int64: u.ID, Valid: true}
	}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		if info.Geo.IP != nil {
			rec.IPAddress = info.Geo.IP.String()
		}
		rec.Country = info.Geo.CountryISO
	}

	// What are they doing?
	_ = r.ParseForm() // merges query and body params into r.Form
	rec.Params = paramsJSON(r)

	if slug := r.Form.Get("slug"); slug != "" {
		rec.Slug = sql.NullString{String: slug, Valid: true}
	}
	if course := r.Form.Get("course_slug"); course != "" {
		lesson := strings.Join([]string{
			course,
			r.Form.Get("lesson_slug"),
			r.Form.Get("content_slug"),
		}, ",")
		rec.Lesson = sql.NullString{String: lesson, Valid: true}
	}

	return rec
}

// paramsJSON serialises the merged request parameters.  Single-value keys
// collapse to plain strings so the snapshot stays readable.
func paramsJSON(r *http.Request) string {
	flat := make(map[string]any, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) == 1 {
			flat[k] = vs[0]
		} else {
			flat[k] = vs
		}
	}
	b, err := json.Marshal(flat)
	if err != nil {
		return "{}"
	}
	return string(b)
}

//
// Store
//

// Store persists records into the per-account `activity` table.
type Store struct {
	DB *sqlx.DB
}

// Insert writes one record.  Callers decide how to treat failures; the
// pipeline suppresses them.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	const q = `
        INSERT INTO activity
               (session_id, user_id, browser, ip_address, country,
                component, action, params, slug, lesson, created_at)
        VALUES (:session_id, :user_id, :browser, :ip_address, :country,
                :component, :action, :params, :slug, :lesson, :created_at)`
	_, err := s.DB.NamedExecContext(ctx, q, rec)
	return err
}
