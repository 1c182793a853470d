package journal

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/cinebox/internal/canonical"
	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/vending"
)

func marshalState(ms vending.MachineState) (string, error) {
	data, err := canonical.Marshal(map[string]any{
		"state":               ms.State.String(),
		"credit":              ms.Credit,
		"cursor":              ms.Cursor,
		"first_browse_render": ms.FirstBrowseRender,
	})
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

func unmarshalState(data string) (vending.MachineState, error) {
	var ms vending.MachineState
	if err := json.Unmarshal([]byte(data), &ms); err != nil {
		return vending.MachineState{}, fmt.Errorf("unmarshal state: %w", err)
	}
	return ms, nil
}

func marshalNotification(n vending.Notification) (string, error) {
	data, err := canonical.Marshal(n.ToMap())
	if err != nil {
		return "", fmt.Errorf("marshal notification: %w", err)
	}
	return string(data), nil
}

func unmarshalNotification(data string) (vending.Notification, error) {
	var n vending.Notification
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		return vending.Notification{}, fmt.Errorf("unmarshal notification: %w", err)
	}
	return n, nil
}

func marshalCatalog(cat *catalog.Catalog) (string, error) {
	sessions := cat.Sessions()
	arr := make([]any, len(sessions))
	for i, s := range sessions {
		arr[i] = s.ToMap()
	}
	data, err := canonical.Marshal(arr)
	if err != nil {
		return "", fmt.Errorf("marshal catalog: %w", err)
	}
	return string(data), nil
}

func unmarshalCatalog(data string) ([]catalog.MovieSession, error) {
	var sessions []catalog.MovieSession
	if err := json.Unmarshal([]byte(data), &sessions); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return sessions, nil
}

// tickID is the content address of a tick within a run.
func tickID(runID string, seq int64, ev vending.Event) (string, error) {
	return canonical.Hash(canonical.DomainTick, map[string]any{
		"run_id": runID,
		"seq":    seq,
		"event":  ev.String(),
	})
}
