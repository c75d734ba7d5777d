package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/persistence/middleware"
	"github.com/aretw0/teller/pkg/ports"
	"gopkg.in/yaml.v3"
)

// ListSessions prints the stored session ids.
func ListSessions(ctx context.Context, w io.Writer, store ports.StateStore) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	sort.Strings(ids)
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// sessionView is the operator rendering of a stored state.
type sessionView struct {
	SessionID     string         `yaml:"session_id"`
	UserID        int64          `yaml:"user_id,omitempty"`
	CurrentIntent string         `yaml:"current_intent,omitempty"`
	Entities      map[string]any `yaml:"entities,omitempty"`
	Turns         int            `yaml:"turns"`
	CreatedAt     string         `yaml:"created_at"`
	UpdatedAt     string         `yaml:"updated_at"`
}

// InspectSession prints one session as YAML. Personal data is masked unless
// reveal is set.
func InspectSession(ctx context.Context, w io.Writer, store ports.StateStore, id string, reveal bool) error {
	st, err := store.Load(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("session '%s' not found", id)
	}
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	if !reveal {
		if st, err = middleware.MaskState(st, middleware.DefaultPIIPatterns); err != nil {
			return err
		}
	}

	view := sessionView{
		SessionID:     st.SessionID,
		UserID:        st.UserID,
		CurrentIntent: string(st.CurrentIntent),
		Entities:      st.Entities,
		Turns:         st.Turns,
		CreatedAt:     st.CreatedAt.Format("2006-01-02 15:04:05 MST"),
		UpdatedAt:     st.UpdatedAt.Format("2006-01-02 15:04:05 MST"),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	return enc.Close()
}

// RemoveSessions deletes the given sessions, reporting each one.
func RemoveSessions(ctx context.Context, w io.Writer, store ports.StateStore, ids ...string) error {
	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
