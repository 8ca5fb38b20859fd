package store

import "time"

const (
	keySuggestions = "suggestions"
	keyCounters    = "counters"
	keyStatus      = "status"
	keyTwitchToken = "twitch_token"
)

// SuggestionAuthor is a snapshot of the submitting user at submission time.
type SuggestionAuthor struct {
	Name      string `json:"name"`
	AvatarURL string `json:"icon_url"`
}

type SuggestionRecord struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Author      SuggestionAuthor `json:"author"`
	Upvotes     int              `json:"upvotes"`
	Downvotes   int              `json:"downvotes"`
	Voters      []string         `json:"voters"`
}

// SuggestionLedger maps the ID of the message carrying a suggestion to its
// record, plus the pointer to the current explanation message.
type SuggestionLedger struct {
	ExplanationMessageID string                      `json:"explanation_message_id,omitempty"`
	Suggestions          map[string]SuggestionRecord `json:"suggestions"`
}

// CounterState holds the identifiers of the managed counter channels. When
// Active is false the identifiers are meaningless.
type CounterState struct {
	MemberChannelID string `json:"member_channel_id,omitempty"`
	TwitchChannelID string `json:"twitch_channel_id,omitempty"`
	TikTokChannelID string `json:"tiktok_channel_id,omitempty"`
	CategoryID      string `json:"category_id,omitempty"`
	Active          bool   `json:"active"`
}

type LiveStatus struct {
	IsLive bool `json:"is_live"`
}

type TwitchToken struct {
	AccessToken string    `json:"access_token"`
	ObtainedAt  time.Time `json:"obtained_at"`
}

type SuggestionRepo struct{ store *Store }

func NewSuggestionRepo(s *Store) *SuggestionRepo { return &SuggestionRepo{store: s} }

func (r *SuggestionRepo) Get() (SuggestionLedger, error) {
	ledger := SuggestionLedger{Suggestions: make(map[string]SuggestionRecord)}
	err := r.store.Load(keySuggestions, &ledger)
	if ledger.Suggestions == nil {
		ledger.Suggestions = make(map[string]SuggestionRecord)
	}
	return ledger, err
}

// Update re-reads the ledger, applies mutate, and saves the result under the
// document lock. Callers must not retain the ledger across calls.
func (r *SuggestionRepo) Update(mutate func(*SuggestionLedger) error) error {
	lock := r.store.keyLock(keySuggestions)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := r.Get()
	if err != nil {
		return err
	}
	if err := mutate(&ledger); err != nil {
		return err
	}
	return r.store.Save(keySuggestions, ledger)
}

type CounterRepo struct{ store *Store }

func NewCounterRepo(s *Store) *CounterRepo { return &CounterRepo{store: s} }

func (r *CounterRepo) Get() (CounterState, error) {
	var state CounterState
	err := r.store.Load(keyCounters, &state)
	return state, err
}

func (r *CounterRepo) Set(state CounterState) error {
	lock := r.store.keyLock(keyCounters)
	lock.Lock()
	defer lock.Unlock()
	return r.store.Save(keyCounters, state)
}

type StatusRepo struct{ store *Store }

func NewStatusRepo(s *Store) *StatusRepo { return &StatusRepo{store: s} }

func (r *StatusRepo) Get() (LiveStatus, error) {
	var status LiveStatus
	err := r.store.Load(keyStatus, &status)
	return status, err
}

func (r *StatusRepo) Set(status LiveStatus) error {
	lock := r.store.keyLock(keyStatus)
	lock.Lock()
	defer lock.Unlock()
	return r.store.Save(keyStatus, status)
}

type TokenRepo struct{ store *Store }

func NewTokenRepo(s *Store) *TokenRepo { return &TokenRepo{store: s} }

func (r *TokenRepo) Get() (TwitchToken, error) {
	var token TwitchToken
	err := r.store.Load(keyTwitchToken, &token)
	return token, err
}

func (r *TokenRepo) Set(token TwitchToken) error {
	lock := r.store.keyLock(keyTwitchToken)
	lock.Lock()
	defer lock.Unlock()
	return r.store.Save(keyTwitchToken, token)
}
