package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tripsync/internal/models/db_models"
)

// fileCatalogRepository serves the catalog from a single JSON file, the
// format produced by the data pipeline. Raw records arrive in several loose
// shapes (GeoJSON-style properties wrappers, string coordinates, optional
// dining/stay sub-records); they are resolved into typed Place variants once
// here, at ingestion, never re-sniffed downstream.
type fileCatalogRepository struct {
	path string
}

func NewFileCatalogRepository(path string) PlaceRepository {
	return &fileCatalogRepository{path: path}
}

func (r *fileCatalogRepository) List(ctx context.Context) ([]db_models.Place, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", r.path, err)
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", r.path, err)
	}
	return NormalizeRawPlaces(raw), nil
}

// NormalizeRawPlaces converts loose catalog records into Places:
// deduplicates by id (or name+coordinates), standardizes categories, fills
// the rating/cost defaults and resolves the dining/stay variant.
func NormalizeRawPlaces(raw []map[string]interface{}) []db_models.Place {
	seen := make(map[string]bool, len(raw))
	places := make([]db_models.Place, 0, len(raw))

	for _, record := range raw {
		props := record
		if nested, ok := record["properties"].(map[string]interface{}); ok {
			props = nested
		}

		name := rawString(props, "place_name", "name")
		lat := rawFloat(props, "lat", "latitude")
		lon := rawFloat(props, "lon", "lng", "longitude")
		if name == "" {
			continue
		}

		id := rawString(props, "place_id", "id")
		if id == "" {
			if lat == nil || lon == nil {
				continue
			}
			id = fmt.Sprintf("%s_%g_%g", name, *lat, *lon)
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		place := db_models.Place{
			ID:          id,
			Name:        cleanName(name),
			Address:     rawString(props, "address", "address_line2", "formatted"),
			Category:    mapCategory(rawCategories(props)),
			Latitude:    lat,
			Longitude:   lon,
			Rating:      4.0,
			CostTier:    2,
			ReviewCount: 0,
			Kind:        db_models.PlaceKindAttraction,
		}
		if v := rawFloat(props, "rating"); v != nil {
			place.Rating = *v
		}
		if v := rawInt(props, "cost", "price_level", "cost_tier"); v != nil {
			place.CostTier = *v
		}
		if v := rawInt(props, "user_ratings_total", "review_count"); v != nil {
			place.ReviewCount = *v
		}
		for _, tag := range rawStrings(props, "tags") {
			place.Tags = append(place.Tags, tag)
		}

		resolveVariant(&place, props)
		places = append(places, place)
	}
	return places
}

// resolveVariant settles the tagged union: a record is a dining or stay
// variant when it says so, or when it carries that variant's sub-record.
func resolveVariant(place *db_models.Place, props map[string]interface{}) {
	kind := strings.ToLower(rawString(props, "type", "kind"))

	if sub, ok := props["dining"].(map[string]interface{}); ok || kind == "restaurant" || kind == "dining" {
		place.Kind = db_models.PlaceKindDining
		place.Dining = &db_models.DiningInfo{
			Cuisine: rawString(sub, "cuisine"),
			City:    rawString(sub, "city"),
		}
		if place.Dining.Cuisine == "" {
			place.Dining.Cuisine = rawString(props, "cuisine")
		}
		if place.Dining.Cuisine == "" {
			place.Dining.Cuisine = "Various"
		}
		return
	}

	if sub, ok := props["accommodation"].(map[string]interface{}); ok || kind == "hotel" || kind == "stay" {
		place.Kind = db_models.PlaceKindStay
		place.Stay = &db_models.StayInfo{
			RoomType: rawString(sub, "room_type"),
		}
		if v := rawFloat(sub, "price_per_night", "price"); v != nil {
			place.Stay.PricePerNight = *v
		}
	}
}

func cleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func rawCategories(props map[string]interface{}) []string {
	if cats := rawStrings(props, "categories"); len(cats) > 0 {
		return cats
	}
	if c := rawString(props, "category"); c != "" {
		return []string{c}
	}
	return nil
}

// mapCategory standardizes raw category labels into the catalog's enumerated
// tags.
func mapCategory(categories []string) string {
	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = strings.ToLower(c)
	}
	contains := func(subs ...string) bool {
		for _, c := range cats {
			for _, s := range subs {
				if strings.Contains(c, s) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case contains("beach"):
		return "Beach"
	case contains("history", "museum", "fort"):
		return "Historical"
	case contains("religion", "worship", "temple", "church"):
		return "Religious"
	case contains("nature", "park", "garden"):
		return "Nature"
	case contains("entertainment", "nightlife", "club"):
		return "Nightlife"
	case contains("catering", "restaurant", "cafe", "food"):
		return "Dining"
	case contains("accommodation", "hotel"):
		return "Accommodation"
	default:
		return "Attraction"
	}
}

func rawString(m map[string]interface{}, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func rawStrings(m map[string]interface{}, key string) []string {
	list, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rawFloat accepts both JSON numbers and numeric strings; the raw pipeline
// emits coordinates as strings.
func rawFloat(m map[string]interface{}, keys ...string) *float64 {
	if m == nil {
		return nil
	}
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			f := v
			return &f
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func rawInt(m map[string]interface{}, keys ...string) *int {
	if f := rawFloat(m, keys...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}
