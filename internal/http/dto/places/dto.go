package places

import (
	"time"

	"github.com/dropDatabas3/placebook/internal/store/core"
)

type ImageResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Caption   *string   `json:"caption,omitempty"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type PlaceResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Location  string          `json:"location"`
	Note      *string         `json:"note,omitempty"`
	Images    []ImageResponse `json:"images"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func FromPlace(p *core.Place, imgs []core.PlaceImage) PlaceResponse {
	out := PlaceResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Location:  p.Location,
		Note:      p.Note,
		Images:    make([]ImageResponse, 0, len(imgs)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, img := range imgs {
		out.Images = append(out.Images, ImageResponse{
			ID:        img.ID,
			FileName:  img.FileName,
			Caption:   img.Caption,
			URL:       "/v1/places/" + p.ID + "/images/" + img.ID,
			CreatedAt: img.CreatedAt,
		})
	}
	return out
}
