// Package leaderboard keeps the top scores in a single stored value.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"targetshot/internal/kv"
)

const (
	Key         = "targetshot-leaderboard"
	MaxEntries  = 10
	Placeholder = "No scores yet. Be the first!"
	dateLayout  = "2006-01-02 15:04"
)

type Entry struct {
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}

// Board reads and writes the whole list on every save. Saves within one
// process are serialized; across processes the last writer wins.
type Board struct {
	mu    sync.Mutex
	store kv.Store
	key   string
	now   func() time.Time
	loc   *time.Location
}

func New(store kv.Store) *Board {
	return &Board{
		store: store,
		key:   Key,
		now:   time.Now,
		loc:   time.Local,
	}
}

// SetClock replaces the time source used to stamp new entries.
func (b *Board) SetClock(now func() time.Time) {
	b.now = now
}

// SetLocation sets the zone entry dates are rendered in.
func (b *Board) SetLocation(loc *time.Location) {
	b.loc = loc
}

// Load returns the stored list. A missing, unreadable or corrupt value reads
// as an empty list.
func (b *Board) Load(ctx context.Context) []Entry {
	raw, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		log.Printf("[Leaderboard] load error: %v (treating as empty)\n", err)
		return nil
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("[Leaderboard] corrupt value under %q: %v (treating as empty)\n", b.key, err)
		return nil
	}
	return entries
}

// Save records score and writes back the top entries. It returns the list as
// written.
func (b *Board) Save(ctx context.Context, score int) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := append(b.Load(ctx), Entry{Score: score, Date: b.now().UTC()})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding leaderboard: %w", err)
	}
	if err := b.store.Set(ctx, b.key, string(data)); err != nil {
		return nil, fmt.Errorf("saving leaderboard: %w", err)
	}
	return entries, nil
}

type Row struct {
	Rank  string `json:"rank"`
	When  string `json:"when"`
	Score int    `json:"score"`
}

// View is the display form of the list: either Rows or the placeholder.
type View struct {
	Empty       bool   `json:"empty"`
	Placeholder string `json:"placeholder,omitempty"`
	Rows        []Row  `json:"rows,omitempty"`
}

func (b *Board) Render(ctx context.Context) View {
	return b.View(b.Load(ctx))
}

// View formats entries for display.
func (b *Board) View(entries []Entry) View {
	if len(entries) == 0 {
		return View{Empty: true, Placeholder: Placeholder}
	}
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, Row{
			Rank:  RankLabel(i + 1),
			When:  e.Date.In(b.loc).Format(dateLayout),
			Score: e.Score,
		})
	}
	return View{Rows: rows}
}

// RankLabel returns a medal for the podium and "N." below it.
func RankLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}
