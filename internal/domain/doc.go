// Package domain models the selection core of the weather map viewer.
//
// # Variable naming conventions
//
// The Open-Meteo spatial data service publishes each model domain's variable
// catalogue as a flat, ordered list of names. Names come in two shapes:
//
//	scalar:        "cape", "pressure_msl", "cloud_cover"
//	level-bearing: "<prefix>_<value><unit>"  →  "temperature_850hPa",
//	               "wind_u_component_10m", "soil_temperature_0cm"
//
// Units are metres above ground ("m"), centimetres below ground ("cm"), or
// pressure levels ("hPa"). Level-bearing names sharing a prefix are variants
// of one base quantity and are presented as a single menu entry with a level
// sub-menu. Classification is expressed as three independent grammars
// (levelSuffixRe, levelPrefixRe, levelValueRe) so each can be tested in
// isolation.
//
// # Model runs and overlay files
//
// A domain's metadata document carries the reference time of the latest model
// run. Overlay rasters are published as one ".om" file per display timestamp
// under a path derived from the run time; [BuildOverlayURL] reproduces that
// path byte-for-byte. Domains operated on DWD infrastructure ("dwd_" prefix)
// are served from a dedicated endpoint; the rule is static.
//
// # Selection state
//
// A selection is the (domain, variable, display time) triple. Once a
// metadata document has loaded, the variable is always a member of that
// document's catalogue; before the first load a hard-coded default is used
// optimistically. Transition rules live in selection.go: the variable
// survives a domain change when the new catalogue still carries it, falls
// back to the first same-prefix entry otherwise, and finally to the
// catalogue's first entry.
package domain
