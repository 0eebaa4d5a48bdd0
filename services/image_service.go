package services

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fogleman/gg"
	"github.com/olamide00/countryfx-backend/models"
	"github.com/sirupsen/logrus"
)

const (
	summaryImageWidth  = 800
	summaryImageHeight = 600
)

// ImageService renders the refresh summary as a fixed-size PNG at a single
// well-known path. The artifact is the only mutable filesystem state outside
// the database; each render overwrites the previous image, no history kept.
type ImageService struct {
	imagePath string
}

func NewImageService(imagePath string) *ImageService {
	return &ImageService{imagePath: imagePath}
}

// ImagePath returns the well-known artifact location
func (s *ImageService) ImagePath() string {
	return s.imagePath
}

// RenderSummary draws the 800x600 summary image and persists it. The file is
// written to a temp path and renamed so a concurrent reader never sees a
// partially written image.
func (s *ImageService) RenderSummary(summary models.RefreshSummary) error {
	dc := gg.NewContext(summaryImageWidth, summaryImageHeight)

	// Background
	dc.SetRGB(0.09, 0.11, 0.17)
	dc.Clear()

	// Title
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("Country Data Summary", summaryImageWidth/2, 60, 0.5, 0.5)

	dc.SetRGB(0.75, 0.78, 0.85)
	dc.DrawStringAnchored(fmt.Sprintf("Total countries: %d", summary.TotalCountries), summaryImageWidth/2, 110, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("Last refreshed: %s", summary.GeneratedAt.Format("Mon, 02 Jan 2006 15:04:05 MST")), summaryImageWidth/2, 140, 0.5, 0.5)

	dc.SetRGB(1, 1, 1)
	dc.DrawString("Top countries by estimated GDP", 80, 210)

	y := 250.0
	for i, entry := range summary.TopCountries {
		if i >= topCountriesLimit {
			break
		}
		dc.SetRGB(0.85, 0.87, 0.92)
		dc.DrawString(fmt.Sprintf("%d. %s", i+1, entry.Name), 100, y)
		dc.SetRGB(0.55, 0.85, 0.65)
		dc.DrawStringAnchored(formatGDP(entry.EstimatedGDP), summaryImageWidth-100, y, 1, 0)
		y += 40
	}

	if len(summary.TopCountries) == 0 {
		dc.SetRGB(0.6, 0.6, 0.65)
		dc.DrawString("No GDP data available", 100, y)
	}

	if err := os.MkdirAll(filepath.Dir(s.imagePath), 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	tmpPath := s.imagePath + ".tmp"
	if err := dc.SavePNG(tmpPath); err != nil {
		return fmt.Errorf("failed to write summary image: %w", err)
	}
	if err := os.Rename(tmpPath, s.imagePath); err != nil {
		return fmt.Errorf("failed to replace summary image: %w", err)
	}

	logrus.WithField("image_path", s.imagePath).Debug("Summary image written")
	return nil
}

// formatGDP renders a GDP value as a currency string with no decimal places,
// or "N/A" when the value is unknown.
func formatGDP(gdp *float64) string {
	if gdp == nil {
		return "N/A"
	}
	return "$" + humanize.Comma(int64(math.Round(*gdp)))
}
