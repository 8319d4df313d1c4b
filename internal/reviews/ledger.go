// Package reviews stores product reviews, their helpful votes and the rating
// summaries shown next to a product.
package reviews

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/petsclaws/internal/storage"
)

// DateLayout is the day.month.year form review dates are stored in.
const DateLayout = "02.01.2006"

// ErrInvalidRating is returned for ratings outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

//go:embed seed_reviews.json
var seedReviews []byte

// Review is one buyer review. Helpful always equals len(HelpfulBy).
type Review struct {
	Author    string   `json:"author"`
	Date      string   `json:"date"`
	Text      string   `json:"text"`
	HelpfulBy []string `json:"helpfulBy"`
	ID        int      `json:"id"`
	ProductID int      `json:"productId"`
	Rating    int      `json:"rating"`
	Helpful   int      `json:"helpful"`
	Verified  bool     `json:"verified"`
}

// NewReview is what a buyer submits.
type NewReview struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	ProductID int    `json:"productId"`
	Rating    int    `json:"rating"`
}

// Seed returns the sample reviews a fresh store starts with.
func Seed() ([]Review, error) {
	var rs []Review
	if err := json.NewDecoder(bytes.NewReader(seedReviews)).Decode(&rs); err != nil {
		return nil, fmt.Errorf("decode seed reviews: %w", err)
	}
	return rs, nil
}

// Ledger keeps every review in one list under storage.KeyReviews.
type Ledger struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
	mu    sync.Mutex
}

// NewLedger creates a review ledger over s. A nil logger disables logging.
func NewLedger(s storage.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: s, log: logger, now: time.Now}
}

// All returns every stored review.
func (l *Ledger) All(ctx context.Context) ([]Review, error) {
	rs, _, err := storage.ReadCollection[[]Review](ctx, l.store, storage.KeyReviews)
	return rs, err
}

// SeedIfAbsent writes rs when the review collection has never been written.
// It reports whether it wrote.
func (l *Ledger) SeedIfAbsent(ctx context.Context, rs []Review) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.store.Get(ctx, storage.KeyReviews)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, storage.ErrKeyNotFound):
		return false, fmt.Errorf("check reviews: %w", err)
	}
	if rs == nil {
		rs = []Review{}
	}
	if err := storage.WriteCollection(ctx, l.store, storage.KeyReviews, rs); err != nil {
		return false, err
	}
	l.log.Info("seeded reviews", zap.Int("count", len(rs)))
	return true, nil
}

// ForProduct returns the reviews of productID in stored order.
func (l *Ledger) ForProduct(ctx context.Context, productID int) ([]Review, error) {
	rs, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []Review{}
	for _, r := range rs {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Append stores n as a new verified review dated today. Its id is one more
// than the largest existing id, or 1 for the first review.
func (l *Ledger) Append(ctx context.Context, n NewReview) (Review, error) {
	if n.Rating < 1 || n.Rating > 5 {
		return Review{}, fmt.Errorf("%w: got %d", ErrInvalidRating, n.Rating)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rs, err := l.All(ctx)
	if err != nil {
		return Review{}, err
	}
	id := 1
	for _, r := range rs {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	r := Review{
		ID:        id,
		ProductID: n.ProductID,
		Author:    strings.TrimSpace(n.Author),
		Rating:    n.Rating,
		Date:      l.now().Format(DateLayout),
		Text:      n.Text,
		Verified:  true,
		HelpfulBy: []string{},
	}
	if err := storage.WriteCollection(ctx, l.store, storage.KeyReviews, append(rs, r)); err != nil {
		return Review{}, err
	}
	l.log.Debug("review added",
		zap.Int("review_id", r.ID),
		zap.Int("product_id", r.ProductID),
		zap.Int("rating", r.Rating))
	return r, nil
}

// ToggleHelpful adds userID's helpful vote on reviewID, or withdraws it when
// already present. It returns false when the review does not exist.
func (l *Ledger) ToggleHelpful(ctx context.Context, reviewID int, userID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rs, err := l.All(ctx)
	if err != nil {
		return false, err
	}
	idx := slices.IndexFunc(rs, func(r Review) bool { return r.ID == reviewID })
	if idx < 0 {
		return false, nil
	}

	r := &rs[idx]
	if slices.Contains(r.HelpfulBy, userID) {
		r.HelpfulBy = slices.DeleteFunc(r.HelpfulBy, func(id string) bool { return id == userID })
	} else {
		r.HelpfulBy = append(r.HelpfulBy, userID)
	}
	if r.HelpfulBy == nil {
		r.HelpfulBy = []string{}
	}
	r.Helpful = len(r.HelpfulBy)

	if err := storage.WriteCollection(ctx, l.store, storage.KeyReviews, rs); err != nil {
		return false, err
	}
	return true, nil
}

// IsMarkedHelpful reports whether userID voted reviewID helpful.
func (l *Ledger) IsMarkedHelpful(ctx context.Context, reviewID int, userID string) (bool, error) {
	rs, err := l.All(ctx)
	if err != nil {
		return false, err
	}
	idx := slices.IndexFunc(rs, func(r Review) bool { return r.ID == reviewID })
	return idx >= 0 && slices.Contains(rs[idx].HelpfulBy, userID), nil
}

// Bucket is one histogram bar.
type Bucket struct {
	Rating     int `json:"rating"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// Summary is the rating overview of one product.
type Summary struct {
	Histogram []Bucket `json:"histogram"`
	Average   float64  `json:"average"`
	Count     int      `json:"count"`
}

// Summarize computes the average rounded to one decimal (0 without reviews)
// and the histogram from 5 down to 1 with whole-number percentages.
func Summarize(rs []Review) Summary {
	s := Summary{Count: len(rs), Histogram: make([]Bucket, 0, 5)}
	counts := make(map[int]int, 5)
	sum := 0
	for _, r := range rs {
		counts[r.Rating]++
		sum += r.Rating
	}
	if s.Count > 0 {
		s.Average = math.Round(float64(sum)/float64(s.Count)*10) / 10
	}
	for rating := 5; rating >= 1; rating-- {
		b := Bucket{Rating: rating, Count: counts[rating]}
		if s.Count > 0 {
			b.Percentage = int(math.Round(float64(b.Count) / float64(s.Count) * 100))
		}
		s.Histogram = append(s.Histogram, b)
	}
	return s
}

// Summary summarizes the reviews of productID.
func (l *Ledger) Summary(ctx context.Context, productID int) (Summary, error) {
	rs, err := l.ForProduct(ctx, productID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rs), nil
}
