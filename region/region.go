// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

// Package region loads named delivery areas from GeoJSON and samples
// synthetic orders inside them.
package region

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

const (
	TypePolygon      = "Polygon"
	TypeMultiPolygon = "MultiPolygon"
)

var ErrNoRegions = errors.New("region: no valid regions selected")

// Region is a named Polygon or MultiPolygon. Coordinates are kept in their
// GeoJSON form, [lng, lat] rings, so they can be served back unchanged.
type Region struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`

	polygons []*geom.Polygon
}

// Polygons returns the region's polygons, one for a Polygon region.
func (r *Region) Polygons() []*geom.Polygon {
	return r.polygons
}

// Load reads a GeoJSON FeatureCollection from path.
func Load(path string) ([]*Region, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("opening regions file: %w", err)
	}
	defer f.Close()

	regions, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return regions, nil
}

// Parse decodes a GeoJSON FeatureCollection. Features without a string
// "name" property or whose geometry is not a polygon are skipped.
func Parse(r io.Reader) ([]*Region, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading regions: %w", err)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing regions GeoJSON: %w", err)
	}

	regions := make([]*Region, 0, len(fc.Features))

	for _, feature := range fc.Features {
		name, ok := feature.Properties["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}

		switch g := feature.Geometry.(type) {
		case *geom.Polygon:
			regions = append(regions, &Region{
				Name:        name,
				Type:        TypePolygon,
				Coordinates: g.Coords(),
				polygons:    []*geom.Polygon{g},
			})
		case *geom.MultiPolygon:
			polygons := make([]*geom.Polygon, g.NumPolygons())
			for i := range polygons {
				polygons[i] = g.Polygon(i)
			}

			regions = append(regions, &Region{
				Name:        name,
				Type:        TypeMultiPolygon,
				Coordinates: g.Coords(),
				polygons:    polygons,
			})
		}
	}

	return regions, nil
}

// Provider serves the regions of one GeoJSON file, loading it on first use.
type Provider struct {
	path string

	once    sync.Once
	regions []*Region
	byName  map[string]*Region
	err     error
}

// NewProvider returns a Provider reading path lazily.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// NewStaticProvider returns a Provider over already parsed regions.
func NewStaticProvider(regions []*Region) *Provider {
	p := &Provider{}
	p.once.Do(func() { p.index(regions) })

	return p
}

func (p *Provider) load() error {
	p.once.Do(func() {
		regions, err := Load(p.path)
		if err != nil {
			p.err = err

			return
		}

		p.index(regions)
	})

	return p.err
}

func (p *Provider) index(regions []*Region) {
	p.regions = regions
	p.byName = make(map[string]*Region, len(regions))

	for _, r := range regions {
		key := fold(r.Name)
		if _, dup := p.byName[key]; !dup {
			p.byName[key] = r
		}
	}
}

// Regions returns every region in file order.
func (p *Provider) Regions() ([]*Region, error) {
	if err := p.load(); err != nil {
		return nil, err
	}

	return p.regions, nil
}

// Find returns the regions matching names, ignoring case and accents, in the
// order requested. Unknown names are skipped; ErrNoRegions is returned when
// nothing matches.
func (p *Provider) Find(names ...string) ([]*Region, error) {
	if err := p.load(); err != nil {
		return nil, err
	}

	seen := make(map[*Region]bool)

	var found []*Region

	for _, name := range names {
		r, ok := p.byName[fold(name)]
		if !ok || seen[r] {
			continue
		}

		seen[r] = true
		found = append(found, r)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRegions, strings.Join(names, ", "))
	}

	return found, nil
}
