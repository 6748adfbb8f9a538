package reviews

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// MinRating is the lowest rating that becomes a testimonial.
	MinRating = 4
	maxRating = 5
	// AnonymousAuthor is shown when the directory has no author name.
	AnonymousAuthor = "Anonymous"
)

// Review is a public review as returned by the directory.
type Review struct {
	AuthorName     string
	AuthorPhotoURL string
	Rating         int
	Text           string
}

// CuratedTestimonial is a review selected for display.
type CuratedTestimonial struct {
	AuthorName     string
	AuthorImageURL string
	Body           string
	Rating         int
	Position       int
	ContentHash    string
}

// ID derives the testimonial primary key from the storefront and content
// hash, so the same review always maps to the same row.
func (c CuratedTestimonial) ID(storefrontID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(storefrontID, []byte(c.ContentHash))
}

type candidate struct {
	review  Review
	body    string
	hasText bool
	index   int
}

// Curate keeps reviews rated 4 or 5, orders those with text first, then by
// rating, then by original position, and returns at most maxCount entries
// (0 means no limit). Reviews without text get a "Rated N stars" body.
// Repeats of the same author and body are dropped, keeping the first.
func Curate(reviews []Review, maxCount int) []CuratedTestimonial {
	candidates := make([]candidate, 0, len(reviews))
	for i, r := range reviews {
		if r.Rating < MinRating || r.Rating > maxRating {
			continue
		}
		text := strings.TrimSpace(r.Text)
		body := text
		if body == "" {
			body = fmt.Sprintf("Rated %d stars", r.Rating)
		}
		candidates = append(candidates, candidate{review: r, body: body, hasText: text != "", index: i})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.hasText != b.hasText {
			return a.hasText
		}
		if a.review.Rating != b.review.Rating {
			return a.review.Rating > b.review.Rating
		}
		return a.index < b.index
	})

	seen := make(map[string]struct{}, len(candidates))
	out := make([]CuratedTestimonial, 0, len(candidates))
	for _, c := range candidates {
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		author := strings.TrimSpace(c.review.AuthorName)
		hash := ContentHash(author, c.body)
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}

		if author == "" {
			author = AnonymousAuthor
		}
		out = append(out, CuratedTestimonial{
			AuthorName:     author,
			AuthorImageURL: strings.TrimSpace(c.review.AuthorPhotoURL),
			Body:           c.body,
			Rating:         c.review.Rating,
			Position:       len(out),
			ContentHash:    hash,
		})
	}
	return out
}

// ContentHash fingerprints a review by author and body.
func ContentHash(author, body string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(author)) + "\x00" + strings.TrimSpace(body)))
	return hex.EncodeToString(sum[:])
}
