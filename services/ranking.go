package services

import (
	"sort"

	"github.com/charleshall888/Vacation-Finder/models"
)

// RankingService filters, scores, and orders properties against a search
// config. It is stateless; every call works on the snapshot it is given.
type RankingService struct{}

func NewRankingService() *RankingService {
	return &RankingService{}
}

// neutralSubScore is used for a dimension a passing property is missing.
const neutralSubScore = 0.5

// Passes reports whether a property satisfies every constraint of the
// config. A property with an unknown value for an active max-threshold
// constraint fails that constraint: missing data never admits a listing.
func (r *RankingService) Passes(p *models.Property, cfg *models.SearchConfig) bool {
	// Price is only constrained when known; the scrapers always set it,
	// so zero means the source withheld it.
	if cfg.MaxPricePerWeek > 0 && p.TotalPrice > 0 && p.TotalPrice > cfg.MaxPricePerWeek {
		return false
	}

	if p.Bedrooms < cfg.MinBedrooms || p.Bedrooms > cfg.MaxBedrooms {
		return false
	}

	if cfg.MaxBeachWalkMinutes > 0 {
		if p.BeachWalkMinutes == nil || *p.BeachWalkMinutes > cfg.MaxBeachWalkMinutes {
			return false
		}
	}

	if cfg.MaxDistanceMiles > 0 {
		if p.DistanceFromOriginMiles == nil || *p.DistanceFromOriginMiles > float64(cfg.MaxDistanceMiles) {
			return false
		}
	}

	for _, tag := range cfg.RequiredAmenities {
		if !p.Amenities.Satisfies(tag) {
			return false
		}
	}

	return true
}

// Score computes the weighted value score in [0,1]. Weights are treated as
// relative importance: the sum renormalizes the result, so weights that do
// not add up to 1 still produce a score on the same scale. All-zero weights
// score 0.
func (r *RankingService) Score(p *models.Property, cfg *models.SearchConfig) float64 {
	w := cfg.ScoringWeights
	sum := w.Sum()
	if sum == 0 {
		return 0
	}

	score := w.Price*r.priceScore(p, cfg) +
		w.Reviews*r.reviewScore(p) +
		w.Beach*r.beachScore(p, cfg) +
		w.Amenities*r.amenityScore(p, cfg) +
		w.Distance*r.distanceScore(p, cfg)

	return score / sum
}

func (r *RankingService) priceScore(p *models.Property, cfg *models.SearchConfig) float64 {
	if p.TotalPrice <= 0 || cfg.MaxPricePerWeek <= 0 {
		return neutralSubScore
	}
	return clamp01(1 - p.TotalPrice/cfg.MaxPricePerWeek)
}

func (r *RankingService) reviewScore(p *models.Property) float64 {
	if p.ReviewScore == nil {
		return neutralSubScore
	}
	return clamp01(*p.ReviewScore / 5)
}

func (r *RankingService) beachScore(p *models.Property, cfg *models.SearchConfig) float64 {
	if p.BeachWalkMinutes == nil || cfg.MaxBeachWalkMinutes <= 0 {
		return neutralSubScore
	}
	return clamp01(1 - float64(*p.BeachWalkMinutes)/float64(cfg.MaxBeachWalkMinutes))
}

func (r *RankingService) distanceScore(p *models.Property, cfg *models.SearchConfig) float64 {
	if p.DistanceFromOriginMiles == nil || cfg.MaxDistanceMiles <= 0 {
		return neutralSubScore
	}
	return clamp01(1 - *p.DistanceFromOriginMiles/float64(cfg.MaxDistanceMiles))
}

// amenityScore is the fraction of required amenities the property has. When
// the config requires none, the fraction of the five tracked amenities
// present serves as a bonus signal instead.
func (r *RankingService) amenityScore(p *models.Property, cfg *models.SearchConfig) float64 {
	if len(cfg.RequiredAmenities) > 0 {
		satisfied := 0
		for _, tag := range cfg.RequiredAmenities {
			if p.Amenities.Satisfies(tag) {
				satisfied++
			}
		}
		return float64(satisfied) / float64(len(cfg.RequiredAmenities))
	}

	present := 0
	a := p.Amenities
	for _, has := range []bool{a.HasFullKitchen, a.ParkingSpots > 0, a.HasPool, a.HasHotTub, a.PetFriendly} {
		if has {
			present++
		}
	}
	return float64(present) / 5
}

// Rank filters the snapshot, scores every passing property, orders by the
// sort key, and returns the requested page. Total reflects the filtered set
// before pagination.
func (r *RankingService) Rank(props []models.Property, cfg *models.SearchConfig, sortBy models.SortKey, skip, limit int) ([]models.Property, int) {
	var passing []models.Property
	for _, p := range props {
		if !r.Passes(&p, cfg) {
			continue
		}
		score := r.Score(&p, cfg)
		p.ValueScore = &score
		passing = append(passing, p)
	}

	SortProperties(passing, sortBy)

	total := len(passing)
	return paginate(passing, skip, limit), total
}

// SortProperties orders in place per the sort key. Properties missing the
// key's dimension always sort after those that have it.
func SortProperties(props []models.Property, key models.SortKey) {
	sort.SliceStable(props, func(i, j int) bool {
		a, b := &props[i], &props[j]
		switch key {
		case models.SortPrice:
			return a.TotalPrice < b.TotalPrice
		case models.SortReviews:
			return nullsLastDesc(a.ReviewScore, b.ReviewScore)
		case models.SortBeach:
			return nullsLastAscInt(a.BeachWalkMinutes, b.BeachWalkMinutes)
		default:
			return nullsLastDesc(a.ValueScore, b.ValueScore)
		}
	})
}

func nullsLastDesc(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a > *b
}

func nullsLastAscInt(a, b *int) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

func paginate(props []models.Property, skip, limit int) []models.Property {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	if skip >= len(props) {
		return []models.Property{}
	}
	end := len(props)
	if skip+limit < end {
		end = skip + limit
	}
	return props[skip:end]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
