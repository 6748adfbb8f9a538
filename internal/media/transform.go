package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/angelmondragon/storefronts/pkg/config"
	"github.com/angelmondragon/storefronts/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

const (
	outputContentType = "image/jpeg"
	hashPrefixLen     = 16
)

// Geometry is a target rendition size.
type Geometry struct {
	Width  int
	Height int
}

// Rendition is a transformed image ready for storage.
type Rendition struct {
	Data   []byte
	Width  int
	Height int
	Hash   string
}

// Transformer crops and re-encodes images per role.
type Transformer struct {
	hero    Geometry
	gallery Geometry
	quality int
}

// NewTransformer reads role geometry and JPEG quality from config.
func NewTransformer(cfg config.MediaConfig) *Transformer {
	return &Transformer{
		hero:    Geometry{Width: cfg.HeroWidth, Height: cfg.HeroHeight},
		gallery: Geometry{Width: cfg.GalleryWidth, Height: cfg.GalleryHeight},
		quality: cfg.ImageQuality,
	}
}

// GeometryFor returns the rendition size for role.
func (t *Transformer) GeometryFor(role enums.ImageRole) Geometry {
	if role == enums.ImageRoleHero {
		return t.hero
	}
	return t.gallery
}

// Transform center-crops data to fill the role geometry and encodes JPEG.
func (t *Transformer) Transform(data []byte, role enums.ImageRole) (*Rendition, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode image")
	}
	geo := t.GeometryFor(role)
	dst := imaging.Fill(src, geo.Width, geo.Height, imaging.Center, imaging.Lanczos)

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, dst, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode jpeg")
	}

	sum := sha256.Sum256(buf.Bytes())
	bounds := dst.Bounds()
	return &Rendition{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Hash:   hex.EncodeToString(sum[:])[:hashPrefixLen],
	}, nil
}

// StorageKey is the content-addressed object key of a rendition.
func StorageKey(storefrontID uuid.UUID, role enums.ImageRole, hash string) string {
	return fmt.Sprintf("storefronts/%s/%s/%s.jpg", storefrontID, role, hash)
}
