package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLevelBearing(t *testing.T) {
	tests := []struct {
		name     string
		variable string
		want     bool
	}{
		{"pressure level", "temperature_850hPa", true},
		{"height level", "wind_u_component_10m", true},
		{"soil depth", "soil_temperature_0cm", true},
		{"two metre", "temperature_2m", true},
		{"scalar", "cape", false},
		{"scalar with underscores", "pressure_msl", false},
		{"trailing digits without unit", "cloud_cover_3", false},
		{"unit without digits", "temperature_hPa", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLevelBearing(tt.variable))
		})
	}
}

func TestLevelPrefix(t *testing.T) {
	tests := []struct {
		name     string
		variable string
		want     string
		ok       bool
	}{
		{"simple", "temperature_850hPa", "temperature", true},
		{"multi segment", "wind_u_component_850hPa", "wind_u_component", true},
		{"height", "wind_gusts_10m", "wind_gusts", true},
		{"no prefix before level", "_850hPa", "", false},
		{"not level bearing", "cape", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, ok := LevelPrefix(tt.variable)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, prefix)
		})
	}
}

func TestLevelValue(t *testing.T) {
	tests := []struct {
		name     string
		variable string
		value    string
		unit     string
		ok       bool
	}{
		{"pressure", "temperature_850hPa", "850", "hPa", true},
		{"metres", "wind_u_component_10m", "10", "m", true},
		{"centimetres", "soil_temperature_0cm", "0", "cm", true},
		{"scalar", "precipitation", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, unit, ok := LevelValue(tt.variable)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.unit, unit)
		})
	}
}

func TestClassifyVariables(t *testing.T) {
	t.Run("scalars pass through verbatim in order", func(t *testing.T) {
		c := ClassifyVariables([]string{"cape", "pressure_msl", "cloud_cover"})

		assert.Equal(t, []string{"cape", "pressure_msl", "cloud_cover"}, c.Options)
		assert.Empty(t, c.Groups)
	})

	t.Run("level-bearing names group under one prefix", func(t *testing.T) {
		c := ClassifyVariables([]string{
			"temperature_2m",
			"temperature_850hPa",
			"temperature_500hPa",
		})

		require.Contains(t, c.Groups, "temperature")
		entries := c.Groups["temperature"]
		require.Len(t, entries, 3)
		// Source order preserved within the group.
		assert.Equal(t, "temperature_2m", entries[0].Variable)
		assert.Equal(t, "temperature_850hPa", entries[1].Variable)
		assert.Equal(t, "temperature_500hPa", entries[2].Variable)
		// Prefix appears exactly once among the options.
		assert.Equal(t, []string{"temperature"}, c.Options)
	})

	t.Run("mixed catalogue keeps source order across kinds", func(t *testing.T) {
		c := ClassifyVariables([]string{
			"cape",
			"temperature_2m",
			"wind_u_component_10m",
			"temperature_850hPa",
			"precipitation",
			"wind_u_component_850hPa",
		})

		assert.Equal(t, []string{"cape", "temperature", "wind_u_component", "precipitation"}, c.Options)
		assert.Len(t, c.Groups["temperature"], 2)
		assert.Len(t, c.Groups["wind_u_component"], 2)
	})

	t.Run("display labels extracted from level suffix", func(t *testing.T) {
		c := ClassifyVariables([]string{"temperature_850hPa", "temperature_2m"})

		entries := c.Groups["temperature"]
		require.Len(t, entries, 2)
		assert.Equal(t, "850 hPa", entries[0].Label)
		assert.Equal(t, "2 m", entries[1].Label)
	})

	t.Run("unextractable prefix dropped from both outputs", func(t *testing.T) {
		c := ClassifyVariables([]string{"_850hPa", "cape"})

		assert.Equal(t, []string{"cape"}, c.Options)
		assert.Empty(t, c.Groups)
	})

	t.Run("every level-bearing input in exactly one group", func(t *testing.T) {
		input := []string{
			"temperature_2m", "temperature_850hPa",
			"wind_u_component_10m", "wind_v_component_10m",
			"soil_temperature_0cm",
		}
		c := ClassifyVariables(input)

		membership := make(map[string]int)
		for _, entries := range c.Groups {
			for _, e := range entries {
				membership[e.Variable]++
			}
		}
		for _, v := range input {
			assert.Equal(t, 1, membership[v], "variable %s", v)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		c := ClassifyVariables(nil)

		assert.Empty(t, c.Options)
		assert.Empty(t, c.Groups)
	})
}

func TestDefaultGroupMember(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    string
	}{
		{"prefers 2m", []string{"temperature_850hPa", "temperature_2m", "temperature_10m"}, "temperature_2m"},
		{"falls back to 10m", []string{"wind_u_component_850hPa", "wind_u_component_10m"}, "wind_u_component_10m"},
		{"falls back to 100m", []string{"wind_u_component_850hPa", "wind_u_component_100m"}, "wind_u_component_100m"},
		{"pressure only takes first", []string{"geopotential_height_500hPa", "geopotential_height_850hPa"}, "geopotential_height_500hPa"},
		{"10m beats non-metric entries", []string{"wind_u_component_850hPa", "wind_u_component_10m", "wind_u_component_500hPa"}, "wind_u_component_10m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]LevelEntry, len(tt.entries))
			for i, v := range tt.entries {
				entries[i] = LevelEntry{Variable: v}
			}
			got, ok := DefaultGroupMember(entries)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Variable)
		})
	}

	t.Run("empty group", func(t *testing.T) {
		_, ok := DefaultGroupMember(nil)
		assert.False(t, ok)
	})
}
