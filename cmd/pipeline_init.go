package main

import (
	"github.com/rotisserie/eris"

	"github.com/water-fountains/datablue/internal/pipeline"
	"github.com/water-fountains/datablue/internal/registry"
	"github.com/water-fountains/datablue/pkg/osm"
	"github.com/water-fountains/datablue/pkg/streetview"
	"github.com/water-fountains/datablue/pkg/wikidata"
	"github.com/water-fountains/datablue/pkg/wikimedia"
	"github.com/water-fountains/datablue/pkg/wikipedia"
)

// env bundles the registries and pipeline built from config.
type env struct {
	Locations  *registry.Locations
	Properties *registry.Properties
	Pipeline   *pipeline.Pipeline
}

// initPipeline loads the registries and wires all provider clients.
func initPipeline() (*env, error) {
	locations, err := registry.LoadLocations(cfg.Registry.LocationsPath)
	if err != nil {
		return nil, eris.Wrap(err, "init: load locations")
	}
	props, err := registry.LoadProperties(cfg.Registry.PropertiesPath)
	if err != nil {
		return nil, eris.Wrap(err, "init: load properties")
	}

	osmClient := osm.NewClient(
		osm.WithBaseURL(cfg.OSM.BaseURL),
		osm.WithRateLimit(cfg.OSM.RatePerSec),
	)
	wdClient := wikidata.NewClient(
		wikidata.WithSparqlURL(cfg.Wikidata.SparqlURL),
		wikidata.WithAPIURL(cfg.Wikidata.APIURL),
		wikidata.WithRateLimit(cfg.Wikidata.RatePerSec),
	)
	wmClient := wikimedia.NewClient(
		wikimedia.WithAPIURL(cfg.Wikimedia.APIURL),
		wikimedia.WithRateLimit(cfg.Wikimedia.RatePerSec),
		wikimedia.WithMaxImages(cfg.Wikimedia.MaxImages),
	)
	wpClient := wikipedia.NewClient()
	svClient := streetview.NewClient(cfg.Streetview.Key,
		streetview.WithBaseURL(cfg.Streetview.BaseURL),
	)

	return &env{
		Locations:  locations,
		Properties: props,
		Pipeline:   pipeline.New(locations, props, osmClient, wdClient, wmClient, wpClient, svClient),
	}, nil
}
