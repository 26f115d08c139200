package conversion

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/a-bouts/conversion/latlon"
)

func TestRadarToGisKnownValue(t *testing.T) {
	to, err := RadarToGis(latlon.LatLon{Lat: 0, Lon: 0}, Radar{Bearing: 90, Distance: latlon.R * math.Pi / 2})
	if err != nil {
		t.Fatalf("RadarToGis() error = %v", err)
	}
	if math.Abs(to.Lon-90) > 1e-9 || math.Abs(to.Lat) > 1e-9 {
		t.Errorf("RadarToGis() = {%f,%f}; want {0,90}", to.Lat, to.Lon)
	}
}

func TestGisToRadarKnownValue(t *testing.T) {
	r, err := GisToRadar(latlon.LatLon{Lat: 0, Lon: 0}, latlon.LatLon{Lat: 90, Lon: 0})
	if err != nil {
		t.Fatalf("GisToRadar() error = %v", err)
	}
	if want := latlon.R * math.Pi / 2; math.Abs(r.Distance-want) > 1e-6 {
		t.Errorf("GisToRadar() distance = %f; want %f", r.Distance, want)
	}
	if math.Abs(r.Distance-10007543.4) > 1 {
		t.Errorf("GisToRadar() distance = %f; want ~10007543", r.Distance)
	}
	if r.Bearing != 0 {
		t.Errorf("GisToRadar() bearing = %f; want 0", r.Bearing)
	}
}

func TestZeroDistance(t *testing.T) {
	origins := []latlon.LatLon{
		{Lat: 0, Lon: 0},
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: -90, Lon: 180},
		{Lat: 90, Lon: -180},
		{Lat: -12.25, Lon: -77.5},
	}
	for _, from := range origins {
		for _, b := range []float64{0, 45, 180, 271.5, 360} {
			to, err := RadarToGis(from, Radar{Bearing: b, Distance: 0})
			if err != nil {
				t.Errorf("RadarToGis(%v, 0m at %f°) error = %v", from, b, err)
				continue
			}
			if math.Abs(to.Lat-from.Lat) > 1e-9 || math.Abs(to.Lon-from.Lon) > 1e-9 {
				t.Errorf("RadarToGis(%v, 0m at %f°) = %v; want %v", from, b, to, from)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	origins := []latlon.LatLon{
		{Lat: 0, Lon: 0},
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 60, Lon: 179.5},
		{Lat: -45, Lon: -179.9},
	}
	bearings := []float64{0.5, 37, 90, 135.25, 200, 299.99, 359}
	distances := []float64{1, 1000, 250e3, 3e6, 12e6}

	for _, from := range origins {
		for _, b := range bearings {
			for _, d := range distances {
				to, err := RadarToGis(from, Radar{Bearing: b, Distance: d})
				if err != nil {
					t.Fatalf("RadarToGis(%v, %fm at %f°) error = %v", from, d, b, err)
				}
				r, err := GisToRadar(from, to)
				if err != nil {
					t.Fatalf("GisToRadar(%v, %v) error = %v", from, to, err)
				}
				if math.Abs(r.Distance-d) > 1e-6*d {
					t.Errorf("round trip from %v at %f° distance = %f; want %f", from, b, r.Distance, d)
				}
				Δb := math.Mod(math.Abs(r.Bearing-b), 360)
				if Δb > 180 {
					Δb = 360 - Δb
				}
				if Δb > 1e-5 {
					t.Errorf("round trip from %v over %fm bearing = %f; want %f", from, d, r.Bearing, b)
				}
			}
		}
	}
}

func TestBearingInRange(t *testing.T) {
	points := []latlon.LatLon{
		{Lat: 0, Lon: 0},
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 0},
		{Lat: 10, Lon: -180},
		{Lat: -10, Lon: 180},
		{Lat: 51.5, Lon: -0.12},
	}
	for _, p1 := range points {
		for _, p2 := range points {
			r, err := GisToRadar(p1, p2)
			if err != nil {
				t.Fatalf("GisToRadar(%v, %v) error = %v", p1, p2, err)
			}
			if r.Bearing < 0 || r.Bearing >= 360 {
				t.Errorf("GisToRadar(%v, %v) bearing = %f; want [0,360)", p1, p2, r.Bearing)
			}
			back, err := GisToRadar(p2, p1)
			if err != nil {
				t.Fatalf("GisToRadar(%v, %v) error = %v", p2, p1, err)
			}
			if math.Abs(back.Distance-r.Distance) > 1e-6 {
				t.Errorf("distance %v->%v = %f, reverse = %f; want equal", p1, p2, r.Distance, back.Distance)
			}
		}
	}
}

func TestRadarToGisInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		from  latlon.LatLon
		r     Radar
		field string
	}{
		{"negative distance", latlon.LatLon{}, Radar{Bearing: 0, Distance: -1}, "distance"},
		{"bearing above 360", latlon.LatLon{}, Radar{Bearing: 361, Distance: 0}, "bearing"},
		{"negative bearing", latlon.LatLon{}, Radar{Bearing: -0.1, Distance: 10}, "bearing"},
		{"longitude", latlon.LatLon{Lon: 180.5}, Radar{}, "lon1"},
		{"latitude", latlon.LatLon{Lat: -91}, Radar{}, "lat1"},
		{"longitude before latitude", latlon.LatLon{Lat: 100, Lon: -200}, Radar{}, "lon1"},
		{"latitude before distance", latlon.LatLon{Lat: 100}, Radar{Distance: -5}, "lat1"},
		{"distance before bearing", latlon.LatLon{}, Radar{Bearing: 400, Distance: -5}, "distance"},
		{"nan longitude", latlon.LatLon{Lon: math.NaN()}, Radar{}, "lon1"},
		{"nan bearing", latlon.LatLon{}, Radar{Bearing: math.NaN()}, "bearing"},
		{"infinite distance", latlon.LatLon{}, Radar{Distance: math.Inf(1)}, "distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to, err := RadarToGis(tt.from, tt.r)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("RadarToGis() error = %v; want ErrInvalidInput", err)
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("RadarToGis() error = %T; want *InputError", err)
			}
			if inputErr.Field != tt.field {
				t.Errorf("RadarToGis() field = %s; want %s", inputErr.Field, tt.field)
			}
			if to != (latlon.LatLon{}) {
				t.Errorf("RadarToGis() = %v; want zero value on error", to)
			}
		})
	}
}

func TestGisToRadarInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		from, to latlon.LatLon
		field    string
	}{
		{"start longitude", latlon.LatLon{Lon: 181}, latlon.LatLon{}, "lon1"},
		{"start latitude", latlon.LatLon{Lat: 90.01}, latlon.LatLon{}, "lat1"},
		{"end longitude", latlon.LatLon{}, latlon.LatLon{Lon: -180.01}, "lon2"},
		{"end latitude", latlon.LatLon{}, latlon.LatLon{Lat: -95}, "lat2"},
		{"first failure wins", latlon.LatLon{Lat: 91}, latlon.LatLon{Lon: 500}, "lat1"},
		{"nan end latitude", latlon.LatLon{}, latlon.LatLon{Lat: math.NaN()}, "lat2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := GisToRadar(tt.from, tt.to)
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("GisToRadar() error = %v; want *InputError", err)
			}
			if inputErr.Field != tt.field {
				t.Errorf("GisToRadar() field = %s; want %s", inputErr.Field, tt.field)
			}
			if errors.Is(err, ErrInvariantViolation) {
				t.Errorf("GisToRadar() error matches ErrInvariantViolation")
			}
			if r != (Radar{}) {
				t.Errorf("GisToRadar() = %v; want zero value on error", r)
			}
		})
	}
}

func TestProjectionOntoPole(t *testing.T) {
	for i := 0; i < 900; i++ {
		lat := float64(i) / 10

		to, err := RadarToGis(latlon.LatLon{Lat: lat, Lon: 0}, Radar{Bearing: 0, Distance: latlon.R * (90 - lat) * math.Pi / 180})
		if err != nil {
			t.Errorf("north from lat %.1f: error = %v", lat, err)
		} else if math.Abs(to.Lat-90) > 1e-5 {
			t.Errorf("north from lat %.1f = {%f,%f}; want lat 90", lat, to.Lat, to.Lon)
		}

		to, err = RadarToGis(latlon.LatLon{Lat: -lat, Lon: 45}, Radar{Bearing: 180, Distance: latlon.R * (90 - lat) * math.Pi / 180})
		if err != nil {
			t.Errorf("south from lat %.1f: error = %v", -lat, err)
		} else if math.Abs(to.Lat+90) > 1e-5 {
			t.Errorf("south from lat %.1f = {%f,%f}; want lat -90", -lat, to.Lat, to.Lon)
		}
	}
}

func TestConcurrentConversions(t *testing.T) {
	from := latlon.LatLon{Lat: 48.8566, Lon: 2.3522}
	want, err := RadarToGis(from, Radar{Bearing: 245, Distance: 5837e3})
	if err != nil {
		t.Fatalf("RadarToGis() error = %v", err)
	}
	wantBack, err := GisToRadar(from, want)
	if err != nil {
		t.Fatalf("GisToRadar() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				to, err := RadarToGis(from, Radar{Bearing: 245, Distance: 5837e3})
				if err != nil || to != want {
					errs <- "RadarToGis() result changed under concurrent calls"
					return
				}
				back, err := GisToRadar(from, to)
				if err != nil || back != wantBack {
					errs <- "GisToRadar() result changed under concurrent calls"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestBoundsAreInclusive(t *testing.T) {
	if _, err := GisToRadar(latlon.LatLon{Lat: -90, Lon: -180}, latlon.LatLon{Lat: 90, Lon: 180}); err != nil {
		t.Errorf("GisToRadar() at the bounds error = %v", err)
	}
	if _, err := RadarToGis(latlon.LatLon{Lat: 45, Lon: 180}, Radar{Bearing: 360, Distance: 1000}); err != nil {
		t.Errorf("RadarToGis() at the bounds error = %v", err)
	}
}

func TestInputErrorMessage(t *testing.T) {
	_, err := RadarToGis(latlon.LatLon{}, Radar{Bearing: 361})
	if want := "the initial bearing should be between 0° and 360°, got 361"; err == nil || err.Error() != want {
		t.Errorf("error = %v; want %q", err, want)
	}

	_, err = RadarToGis(latlon.LatLon{}, Radar{Distance: -1})
	if want := "the distance between starting and end points should be positive, got -1"; err == nil || err.Error() != want {
		t.Errorf("error = %v; want %q", err, want)
	}

	_, err = GisToRadar(latlon.LatLon{Lon: 181}, latlon.LatLon{})
	if want := "the longitude of the starting point should be between -180° and 180°, got 181"; err == nil || err.Error() != want {
		t.Errorf("error = %v; want %q", err, want)
	}
}

func TestResultCheck(t *testing.T) {
	err := lat2Bound.result(math.NaN())
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("result(NaN) = %v; want ErrInvariantViolation", err)
	}
	if want := "unexpected result for the latitude of the end point: NaN"; err.Error() != want {
		t.Errorf("result(NaN) = %q; want %q", err.Error(), want)
	}
	if err := bearingBound.result(360); err != nil {
		t.Errorf("result(360) = %v; want nil", err)
	}
	if err := distanceBound.result(-1e-9); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("result(-1e-9) = %v; want ErrInvariantViolation", err)
	}
}
