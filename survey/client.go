package survey

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/florascan/tilemask"
)

// ErrQuotaExceeded is returned when the API reports the request quota has
// been used up.  Callers should stop the batch instead of retrying.
var ErrQuotaExceeded = errors.New("api quota exceeded")

// DefaultBaseURL is the production Pl@ntNet API endpoint
const DefaultBaseURL = "https://my-api.plantnet.org"

// Config holds the settings needed to talk to the Pl@ntNet API
type Config struct {
	// BaseURL of the API, DefaultBaseURL when empty
	BaseURL string
	// APIKey is the callers API key
	APIKey string
	// Project is the microproject slug, eg "k-southwestern-europe"
	Project string
	// Timeout for a single HTTP request.  Survey identification runs
	// inference per tile on the server side, so it needs a generous value.
	Timeout time.Duration
	// Retries is the number of times a failed request is reattempted
	Retries int
}

// Client wraps the Pl@ntNet species and survey endpoints
type Client struct {
	http    *resty.Client
	project string
	log     *logrus.Logger
}

// SurveyParams are the tiling and result filter parameters for the survey
// tiles endpoint
type SurveyParams struct {
	TileSize   int
	TileStride int
	MultiScale bool
	MinScore   float32
	MaxRank    int
}

// DefaultSurveyParams returns the parameter defaults used by the pipeline
func DefaultSurveyParams() SurveyParams {
	return SurveyParams{
		TileSize:   518,
		TileStride: 259,
		MultiScale: false,
		MinScore:   0.10,
		MaxRank:    1,
	}
}

// NewClient returns a Client for the given configuration
func NewClient(cfg Config, log *logrus.Logger) *Client {

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	h := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetQueryParam("api-key", cfg.APIKey).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			// never retry quota errors
			return r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:    h,
		project: cfg.Project,
		log:     log,
	}
}

// apiSpecies is one species record from the projects species endpoint
type apiSpecies struct {
	ScientificNameWithoutAuthor string      `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string      `json:"scientificNameAuthorship"`
	Family                      string      `json:"family"`
	Genus                       string      `json:"genus"`
	GBIFID                      json.Number `json:"gbifId"`
}

// FetchSpecies retrieves the full species list of the project, following
// the page/pageSize pagination until the last page.  The returned list is
// sorted by scientific name so catalog order, and with it the species
// colors, is stable across runs.
func (c *Client) FetchSpecies(pageSize int) ([]tilemask.Species, error) {

	if pageSize <= 0 {
		pageSize = 500
	}

	var raw []apiSpecies

	for page := 1; ; page++ {
		var pageData []apiSpecies

		// ForceContentType decodes the body as JSON even when the server
		// omits or mislabels the Content-Type header
		resp, err := c.http.R().
			SetQueryParams(map[string]string{
				"lang":     "en",
				"pageSize": strconv.Itoa(pageSize),
				"page":     strconv.Itoa(page),
			}).
			SetResult(&pageData).
			ForceContentType("application/json").
			Get("/v2/projects/" + c.project + "/species")

		if err != nil {
			return nil, errors.Wrapf(err, "fetching species page %d", page)
		}

		if err := c.checkStatus(resp); err != nil {
			return nil, errors.Wrapf(err, "fetching species page %d", page)
		}

		raw = append(raw, pageData...)

		c.log.WithFields(logrus.Fields{
			"page":  page,
			"count": len(pageData),
			"total": len(raw),
		}).Info("fetched species page")

		// a short page is the last page
		if len(pageData) < pageSize {
			break
		}
	}

	species := make([]tilemask.Species, 0, len(raw))

	for _, sp := range raw {
		species = append(species, tilemask.Species{
			ID:             tilemask.SpeciesKey(sp.ScientificNameWithoutAuthor),
			ScientificName: sp.ScientificNameWithoutAuthor,
			Family:         sp.Family,
			Genus:          sp.Genus,
			GBIFID:         sp.GBIFID.String(),
		})
	}

	sort.Slice(species, func(i, j int) bool {
		return species[i].ScientificName < species[j].ScientificName
	})

	return species, nil
}

// EstimateSurveyCost returns the credit cost of a survey identification for
// an image of the given dimensions.  The cost endpoint only takes the
// tiling parameters, not the result filters.
func (c *Client) EstimateSurveyCost(width, height int, p SurveyParams) (float64, error) {

	var result struct {
		EstimatedCost float64 `json:"estimated_cost"`
	}

	resp, err := c.http.R().
		SetFormData(map[string]string{
			"size":        fmt.Sprintf("%dx%d", width, height),
			"tile_size":   strconv.Itoa(p.TileSize),
			"tile_stride": strconv.Itoa(p.TileStride),
			"multi_scale": strconv.FormatBool(p.MultiScale),
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Post("/v2/cost/survey/" + c.project)

	if err != nil {
		return 0, errors.Wrap(err, "estimating survey cost")
	}

	if err := c.checkStatus(resp); err != nil {
		return 0, errors.Wrap(err, "estimating survey cost")
	}

	return result.EstimatedCost, nil
}

// survey response wire types
type surveyResponse struct {
	Results struct {
		NbSubQueries         int             `json:"nb_sub_queries"`
		NbMatchingSubQueries int             `json:"nb_matching_sub_queries"`
		Uncovered            float64         `json:"uncovered"`
		Species              []surveySpecies `json:"species"`
	} `json:"results"`
}

type surveySpecies struct {
	Binomial string           `json:"binomial"`
	Name     string           `json:"name"`
	Family   string           `json:"family"`
	Genus    string           `json:"genus"`
	GBIFID   json.Number      `json:"gbif_id"`
	Coverage float64          `json:"coverage"`
	MaxScore float64          `json:"max_score"`
	Count    int              `json:"count"`
	Location []surveyLocation `json:"location"`
}

type surveyLocation struct {
	Center struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"center"`
	Size  int     `json:"size"`
	Score float32 `json:"score"`
	Organ string  `json:"organ"`
}

// SurveyTiles sends the image at imagePath to the survey tiles endpoint and
// reshapes the per species tile locations into flat tile records.  The API
// reports tiles as a center point plus size, which is converted to a
// bounding box clamped to the image dimensions.
func (c *Client) SurveyTiles(imagePath, imageName string, width, height int,
	p SurveyParams) (*ImagePredictions, error) {

	var result surveyResponse

	resp, err := c.http.R().
		SetFile("image", imagePath).
		SetFormData(map[string]string{
			"tile_size":    strconv.Itoa(p.TileSize),
			"tile_stride":  strconv.Itoa(p.TileStride),
			"multi_scale":  strconv.FormatBool(p.MultiScale),
			"min_score":    strconv.FormatFloat(float64(p.MinScore), 'f', -1, 32),
			"max_rank":     strconv.Itoa(p.MaxRank),
			"show_species": "true",
			"show_genus":   "false",
			"show_family":  "false",
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Post("/v2/survey/tiles/" + c.project)

	if err != nil {
		return nil, errors.Wrapf(err, "survey identification of %s", imageName)
	}

	if err := c.checkStatus(resp); err != nil {
		return nil, errors.Wrapf(err, "survey identification of %s", imageName)
	}

	preds := &ImagePredictions{
		Image:                imageName,
		Width:                width,
		Height:               height,
		NbSubQueries:         result.Results.NbSubQueries,
		NbMatchingSubQueries: result.Results.NbMatchingSubQueries,
		Uncovered:            result.Results.Uncovered,
	}

	for _, sp := range result.Results.Species {
		id := tilemask.SpeciesKey(sp.Binomial)

		for _, loc := range sp.Location {
			size := loc.Size
			if size == 0 {
				size = p.TileSize
			}

			// intersect the center +/- size/2 extent with the image
			left := loc.Center.X - size/2
			if left < 0 {
				left = 0
			}

			top := loc.Center.Y - size/2
			if top < 0 {
				top = 0
			}

			right := loc.Center.X - size/2 + size
			if right > width {
				right = width
			}

			bottom := loc.Center.Y - size/2 + size
			if bottom > height {
				bottom = height
			}

			if right <= left || bottom <= top {
				continue
			}

			preds.Tiles = append(preds.Tiles, TileRecord{
				Left:           left,
				Top:            top,
				Width:          right - left,
				Height:         bottom - top,
				SpeciesID:      id,
				ScientificName: sp.Binomial,
				GBIFID:         sp.GBIFID.String(),
				Score:          loc.Score,
				Organ:          loc.Organ,
			})
		}
	}

	c.log.WithFields(logrus.Fields{
		"image":     imageName,
		"tiles":     len(preds.Tiles),
		"species":   len(result.Results.Species),
		"uncovered": preds.Uncovered,
	}).Info("survey identification complete")

	return preds, nil
}

// checkStatus maps non success HTTP statuses to errors
func (c *Client) checkStatus(resp *resty.Response) error {

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case resp.IsError():
		body := resp.String()
		if len(body) > 300 {
			body = body[:300]
		}
		return errors.Errorf("unexpected status %d: %s", resp.StatusCode(), body)
	}

	return nil
}
