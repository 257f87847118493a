package services

import (
	"math"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// station is one NJ Transit / PATH station used as a categorical feature.
type station struct {
	Name string
	Lat  float64
	Lon  float64
}

// njStations covers the commuter stations of the northern NJ listings area.
var njStations = []station{
	{"Hoboken Terminal", 40.7349, -74.0278},
	{"Newark Penn", 40.7347, -74.1644},
	{"Newark Broad St", 40.7476, -74.1718},
	{"Secaucus Junction", 40.7614, -74.0758},
	{"Journal Square", 40.7323, -74.0633},
	{"Exchange Place", 40.7162, -74.0331},
	{"Grove St", 40.7195, -74.0431},
	{"Harrison", 40.7394, -74.1558},
	{"Summit", 40.7165, -74.3575},
	{"Montclair State U", 40.8674, -74.1973},
	{"Morristown", 40.7970, -74.4744},
	{"New Brunswick", 40.4974, -74.4467},
	{"Metropark", 40.5684, -74.3293},
	{"Rahway", 40.6049, -74.2769},
	{"Elizabeth", 40.6634, -74.2152},
	{"Paterson", 40.9147, -74.1679},
	{"Ridgewood", 40.9811, -74.1150},
}

// StationFinder assigns the nearest commuter station to each listing, the
// location feature the rent model was trained with.
type StationFinder struct {
	stations []station
	pool     *utils.WorkerPool
	logger   *utils.Logger
}

// NewStationFinder creates a StationFinder over the built-in station table.
func NewStationFinder(maxConcurrency int, logger *utils.Logger) *StationFinder {
	return &StationFinder{
		stations: njStations,
		pool:     utils.NewWorkerPool(maxConcurrency, 0),
		logger:   logger,
	}
}

// Enrich fills the Station field on every listing, fanning the distance
// search out over the worker pool.
func (sf *StationFinder) Enrich(listings []*models.Listing) {
	for _, l := range listings {
		l := l
		sf.pool.Submit(func() {
			l.Station = sf.Nearest(l.Latitude, l.Longitude)
		})
	}
	sf.pool.Wait()
	sf.logger.Info("[stations] Assigned nearest station for %d listings", len(listings))
}

// Nearest returns the name of the closest station to the given point.
func (sf *StationFinder) Nearest(lat, lon float64) string {
	best := ""
	bestDist := math.MaxFloat64
	for _, s := range sf.stations {
		d := haversineKm(lat, lon, s.Lat, s.Lon)
		if d < bestDist {
			bestDist = d
			best = s.Name
		}
	}
	return best
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
