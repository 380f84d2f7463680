package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joshp123/gotado/tado"
)

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

// resolveZone accepts a zone id or a zone name in any casing.
func resolveZone(input string, zones []tado.Zone) (tado.Zone, error) {
	if id, err := strconv.Atoi(input); err == nil {
		for _, zone := range zones {
			if zone.ID == id {
				return zone, nil
			}
		}
	}
	needle := normalizeName(input)
	for _, zone := range zones {
		if normalizeName(zone.Name) == needle {
			return zone, nil
		}
	}

	available := make([]string, 0, len(zones))
	for _, zone := range zones {
		available = append(available, zone.Name)
	}
	sort.Strings(available)
	return tado.Zone{}, fmt.Errorf("zone %q not found. Available: %s", input, strings.Join(available, ", "))
}

// lookupZone only lists zones when input is a name.
func lookupZone(ctx context.Context, client *tado.Client, input string) (tado.Zone, error) {
	if id, err := strconv.Atoi(input); err == nil {
		return tado.Zone{ID: id, Name: input}, nil
	}
	zones, err := client.Zones(ctx)
	if err != nil {
		return tado.Zone{}, err
	}
	return resolveZone(input, zones)
}
