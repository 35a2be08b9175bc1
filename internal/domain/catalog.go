package domain

// GridDescriptor captures the spatial extent of a model grid, reduced to the
// initial map view it implies.
type GridDescriptor struct {
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`
	Zoom      float64 `json:"zoom"`
}

// DomainDescriptor describes one supported weather model domain.
type DomainDescriptor struct {
	ID    string         `json:"id"`    // identifier used in data paths, e.g. "dwd_icon_d2"
	Label string         `json:"label"` // display label for the domain dropdown
	Group string         `json:"group"` // menu grouping key (operating service)
	Grid  GridDescriptor `json:"grid"`
}

// Domains is the static catalogue of supported model domains, in menu order.
var Domains = []DomainDescriptor{
	{
		ID:    "dwd_icon_d2",
		Label: "DWD ICON D2 (2 km, Central Europe)",
		Group: "DWD Germany",
		Grid:  GridDescriptor{CenterLat: 50.8, CenterLon: 10.2, Zoom: 5.5},
	},
	{
		ID:    "dwd_icon_eu",
		Label: "DWD ICON EU (7 km, Europe)",
		Group: "DWD Germany",
		Grid:  GridDescriptor{CenterLat: 51.0, CenterLon: 12.0, Zoom: 4},
	},
	{
		ID:    "dwd_icon",
		Label: "DWD ICON (11 km, Global)",
		Group: "DWD Germany",
		Grid:  GridDescriptor{CenterLat: 30.0, CenterLon: 10.0, Zoom: 2},
	},
	{
		ID:    "gfs_global",
		Label: "NOAA GFS (25 km, Global)",
		Group: "NOAA U.S.",
		Grid:  GridDescriptor{CenterLat: 38.0, CenterLon: -95.0, Zoom: 2},
	},
	{
		ID:    "gfs_hrrr",
		Label: "NOAA HRRR (3 km, U.S. Conus)",
		Group: "NOAA U.S.",
		Grid:  GridDescriptor{CenterLat: 39.5, CenterLon: -98.0, Zoom: 4},
	},
	{
		ID:    "ecmwf_ifs025",
		Label: "ECMWF IFS (25 km, Global)",
		Group: "ECMWF",
		Grid:  GridDescriptor{CenterLat: 30.0, CenterLon: 0.0, Zoom: 2},
	},
	{
		ID:    "meteofrance_arome_france",
		Label: "Météo-France AROME (1.3 km, France)",
		Group: "Météo-France",
		Grid:  GridDescriptor{CenterLat: 46.5, CenterLon: 2.5, Zoom: 5},
	},
}

// DomainByID looks up a domain descriptor in the catalogue.
func DomainByID(id string) (DomainDescriptor, bool) {
	for _, d := range Domains {
		if d.ID == id {
			return d, true
		}
	}
	return DomainDescriptor{}, false
}
