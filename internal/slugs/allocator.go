package slugs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefronts/pkg/db"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

const maxAttempts = 1000

// Scope names the uniqueness domain a slug is allocated in.
type Scope struct {
	entity   string
	table    string
	parentID uuid.UUID
}

// StorefrontScope is the global storefront slug namespace.
func StorefrontScope() Scope {
	return Scope{entity: "storefront", table: "storefronts"}
}

// ServiceScope is the per-storefront service slug namespace.
func ServiceScope(storefrontID uuid.UUID) Scope {
	return Scope{entity: "service", table: "storefront_services", parentID: storefrontID}
}

func (s Scope) valid() bool {
	if s.table == "" {
		return false
	}
	return s.entity != "service" || s.parentID != uuid.Nil
}

// Allocate returns the first free slug for candidate in scope: the
// normalized base, then base-1, base-2, ... A slug already owned by
// excludeID counts as free so renames keep their slug.
//
// tx must be the transaction that will insert or update the row; on
// Postgres the search is serialized with an advisory lock held until that
// transaction ends.
func Allocate(ctx context.Context, tx *gorm.DB, scope Scope, candidate string, excludeID *uuid.UUID) (string, error) {
	return allocate(ctx, tx, scope, candidate, excludeID, nil)
}

// AllocateBatch allocates one slug per candidate inside tx, treating slugs
// handed out earlier in the batch as taken.
func AllocateBatch(ctx context.Context, tx *gorm.DB, scope Scope, candidates []string) ([]string, error) {
	taken := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		slug, err := allocate(ctx, tx, scope, candidate, nil, taken)
		if err != nil {
			return nil, err
		}
		taken[slug] = struct{}{}
		out = append(out, slug)
	}
	return out, nil
}

func allocate(ctx context.Context, tx *gorm.DB, scope Scope, candidate string, excludeID *uuid.UUID, taken map[string]struct{}) (string, error) {
	if tx == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "slug allocation requires a transaction")
	}
	if !scope.valid() {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "invalid slug scope")
	}

	base := Normalize(candidate)
	conn := tx.WithContext(ctx)
	if err := db.AdvisoryXactLock(conn, scope.entity, scope.parentID.String(), base); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock slug namespace")
	}

	for i := 0; i < maxAttempts; i++ {
		slug := base
		if i > 0 {
			slug = fmt.Sprintf("%s-%d", base, i)
		}
		if _, used := taken[slug]; used {
			continue
		}

		owner, err := scope.owner(conn, slug)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug")
		}
		if owner == uuid.Nil {
			return slug, nil
		}
		if excludeID != nil && owner == *excludeID {
			return slug, nil
		}
	}
	return "", pkgerrors.Newf(pkgerrors.CodeConflict, "no free slug for %q after %d attempts", base, maxAttempts)
}

func (s Scope) owner(conn *gorm.DB, slug string) (uuid.UUID, error) {
	var row struct {
		ID uuid.UUID
	}
	q := conn.Table(s.table).Select("id").Where("slug = ?", slug)
	if s.parentID != uuid.Nil {
		q = q.Where("storefront_id = ?", s.parentID)
	}
	res := q.Limit(1).Find(&row)
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, nil
	}
	return row.ID, nil
}
