package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
)

// Target is the part of a browser page the state is read from and
// restored into.
type Target interface {
	Cookies(ctx context.Context) ([]*proto.NetworkCookie, error)
	SetCookies(ctx context.Context, cookies []*proto.NetworkCookie) error
	EvalInto(ctx context.Context, out any, js string, args ...any) error
	AddScriptOnNewDocument(ctx context.Context, js string) error
}

// restoreStorageJS fills localStorage for one origin without touching
// keys the page already set. Opaque origins throw on access.
const restoreStorageJS = `(() => {
	const o = %s;
	try {
		if (location.origin !== o.origin) return;
		for (const e of o.localStorage) {
			if (localStorage.getItem(e.name) === null) localStorage.setItem(e.name, e.value);
		}
	} catch (e) {}
})();`

const captureStorageJS = `() => {
	try {
		return {
			origin: location.origin,
			localStorage: Object.keys(localStorage).map(k => ({name: k, value: localStorage.getItem(k)})),
		};
	} catch (e) {
		return {origin: 'null', localStorage: []};
	}
}`

// Apply loads s into the browser behind t. Cookies are set immediately;
// localStorage is written when a document of the matching origin loads.
func Apply(ctx context.Context, t Target, s *State) error {
	if s.Empty() {
		return nil
	}
	if err := t.SetCookies(ctx, s.Cookies); err != nil {
		return err
	}
	for _, o := range s.Origins {
		if len(o.LocalStorage) == 0 {
			continue
		}
		raw, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("failed to encode storage for %s: %w", o.Origin, err)
		}
		if err := t.AddScriptOnNewDocument(ctx, fmt.Sprintf(restoreStorageJS, raw)); err != nil {
			return err
		}
	}
	return nil
}

// Capture reads the current cookies and the localStorage of the current
// origin. Origins recorded in prev for other sites are carried over.
func Capture(ctx context.Context, t Target, prev *State) (*State, error) {
	cookies, err := t.Cookies(ctx)
	if err != nil {
		return nil, err
	}

	var current Origin
	if err := t.EvalInto(ctx, &current, captureStorageJS); err != nil {
		return nil, fmt.Errorf("failed to read local storage: %w", err)
	}

	s := &State{Cookies: cookies}
	if prev != nil {
		for _, o := range prev.Origins {
			if o.Origin != current.Origin {
				s.Origins = append(s.Origins, o)
			}
		}
	}
	if current.Origin != "" && current.Origin != "null" && len(current.LocalStorage) > 0 {
		s.Origins = append(s.Origins, current)
	}
	return s, nil
}
