// Scenario-driven sensor snapshot generation for the demo simulator.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"navwatch/internal/config"
	"navwatch/internal/geo"
	"navwatch/internal/sensor"
)

// Supported scenario names.
const (
	ScenarioNormal    = "normal"
	ScenarioCollision = "collision"
	ScenarioSpoofing  = "spoofing"
	ScenarioAnomaly   = "anomaly"
)

// Scenarios lists the scenario names accepted by SetScenario.
var Scenarios = []string{ScenarioNormal, ScenarioCollision, ScenarioSpoofing, ScenarioAnomaly}

// degPerSecPerKnot converts vessel speed in knots to degrees of latitude
// covered per second.
const degPerSecPerKnot = 0.000514

const ownMMSI = "235123456"

// Sensor noise characteristics (standard deviations).
const (
	gpsPosStd    = 0.00001
	gpsSpeedStd  = 0.1
	gpsCourseStd = 0.5

	aisPosStd     = 0.00002
	aisSpeedStd   = 0.3
	aisCourseStd  = 1.0
	aisHeadingStd = 1.0
	aisROTStd     = 0.5

	radarOwnStd    = 0.00005
	radarTargetStd = 0.0001
)

// trafficTarget is one simulated vessel in the vicinity.
type trafficTarget struct {
	mmsi       string
	name       string
	vesselType string
	lat, lon   float64
	speed      float64 // knots
	course     float64 // degrees
}

// Generator produces synthetic sensor snapshots for one vessel moving
// through a small traffic picture. Scenarios skew individual sensors to
// exercise the detection pipeline. Not safe for concurrent use; the
// simulator serializes access.
type Generator struct {
	cfg *config.SimulationConfig
	rng *rand.Rand
	now func() time.Time

	scenario string
	count    int

	lat, lon float64
	speed    float64 // knots
	course   float64 // degrees
	targets  []trafficTarget
}

// NewGenerator seeds a generator from the simulation configuration.
func NewGenerator(cfg *config.SimulationConfig) *Generator {
	g := &Generator{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		scenario: ScenarioNormal,
		lat:      cfg.StartLat,
		lon:      cfg.StartLon,
		speed:    cfg.InitialSpeedKn,
		course:   cfg.InitialCourse,
		targets: []trafficTarget{
			{mmsi: "235012345", name: "MV ALPHA", vesselType: "Cargo",
				lat: cfg.StartLat + 0.02, lon: cfg.StartLon - 0.05, speed: 15, course: 120},
			{mmsi: "235067890", name: "MV BRAVO", vesselType: "Tanker",
				lat: cfg.StartLat - 0.03, lon: cfg.StartLon - 0.01, speed: 18, course: 45},
			{mmsi: "235098765", name: "MV CHARLIE", vesselType: "Container",
				lat: cfg.StartLat + 0.08, lon: cfg.StartLon + 0.08, speed: 14, course: 225},
		},
	}
	if cfg.Scenario != "" {
		g.scenario = cfg.Scenario
	}
	return g
}

// Scenario returns the active scenario name.
func (g *Generator) Scenario() string { return g.scenario }

// SetScenario switches the active scenario. The collision scenario drops the
// lead target close ahead on a converging course.
func (g *Generator) SetScenario(name string) error {
	switch name {
	case ScenarioNormal, ScenarioSpoofing, ScenarioAnomaly:
	case ScenarioCollision:
		if len(g.targets) > 0 {
			g.targets[0].lat = g.lat + 0.01
			g.targets[0].lon = g.lon + 0.01
			g.targets[0].course = 270
		}
	default:
		return fmt.Errorf("unknown scenario %q", name)
	}
	g.scenario = name
	return nil
}

// Next advances the simulation one time step and returns the snapshot.
func (g *Generator) Next() *sensor.Snapshot {
	g.advance()
	g.count++

	heading := g.course + g.uniform(-2, 2)

	return &sensor.Snapshot{
		GPS:     g.gps(),
		AIS:     g.ais(heading),
		Radar:   g.radar(),
		Weather: g.weather(),
		Engine:  g.engine(),
		Tide:    g.tide(),
		Current: g.current(),
	}
}

// advance dead-reckons the own ship and every target along their courses.
func (g *Generator) advance() {
	step := g.cfg.TimeStepSec
	if step <= 0 {
		step = 1
	}
	g.lat, g.lon = moved(g.lat, g.lon, g.speed, g.course, step)
	for i := range g.targets {
		t := &g.targets[i]
		t.lat, t.lon = moved(t.lat, t.lon, t.speed, t.course, step)
	}
}

func moved(lat, lon, speedKn, courseDeg, stepSec float64) (float64, float64) {
	dist := speedKn * degPerSecPerKnot * stepSec
	rad := courseDeg * math.Pi / 180
	return lat + dist*math.Cos(rad),
		lon + dist*math.Sin(rad)/math.Cos(lat*math.Pi/180)
}

func (g *Generator) gps() *sensor.GPSReading {
	lat, lon, speed := g.lat, g.lon, g.speed
	if g.scenario == ScenarioSpoofing {
		// Spoofed receiver: offset position and an impossible speed.
		lat += 0.01
		lon += 0.01
		speed = 35
	}
	return &sensor.GPSReading{
		Latitude:  sensor.Float(lat + g.gauss(gpsPosStd)),
		Longitude: sensor.Float(lon + g.gauss(gpsPosStd)),
		Speed:     sensor.Float(speed + g.gauss(gpsSpeedStd)),
		Course:    sensor.Float(g.course + g.gauss(gpsCourseStd)),
		Timestamp: g.now().UTC().Format(time.RFC3339),
	}
}

func (g *Generator) ais(heading float64) *sensor.AISReading {
	lat, lon, speed := g.lat, g.lon, g.speed
	if g.scenario == ScenarioAnomaly {
		// Faulty transponder: diverging position and inflated speed.
		lat += 0.003
		speed += 8
	}
	targets := make([]sensor.TargetReading, 0, len(g.targets))
	for _, t := range g.targets {
		targets = append(targets, g.targetReading(t, aisPosStd, true))
	}
	return &sensor.AISReading{
		MMSI:      ownMMSI,
		Latitude:  sensor.Float(lat + g.gauss(aisPosStd)),
		Longitude: sensor.Float(lon + g.gauss(aisPosStd)),
		Speed:     sensor.Float(speed + g.gauss(aisSpeedStd)),
		Course:    sensor.Float(g.course + g.gauss(aisCourseStd)),
		Heading:   sensor.Float(heading + g.gauss(aisHeadingStd)),
		ROT:       sensor.Float(g.gauss(aisROTStd)),
		Targets:   targets,
	}
}

func (g *Generator) radar() *sensor.RadarReading {
	targets := make([]sensor.TargetReading, 0, len(g.targets))
	for _, t := range g.targets {
		targets = append(targets, g.targetReading(t, radarTargetStd, false))
	}
	return &sensor.RadarReading{
		OwnShip: &sensor.OwnShipReading{
			Latitude:  sensor.Float(g.lat + g.gauss(radarOwnStd)),
			Longitude: sensor.Float(g.lon + g.gauss(radarOwnStd)),
		},
		Targets: targets,
	}
}

// targetReading builds one target contact. Radar contacts carry no identity.
func (g *Generator) targetReading(t trafficTarget, posStd float64, identified bool) sensor.TargetReading {
	distNM := geo.HaversineNM(g.lat, g.lon, t.lat, t.lon)
	bearing := geo.BearingDegrees(g.lat, g.lon, t.lat, t.lon)
	cpa, tcpa := g.approach(t, distNM)

	r := sensor.TargetReading{
		Latitude:  sensor.Float(t.lat + g.gauss(posStd)),
		Longitude: sensor.Float(t.lon + g.gauss(posStd)),
		Speed:     sensor.Float(t.speed),
		Course:    sensor.Float(t.course),
		Bearing:   sensor.Float(bearing),
		CPA:       sensor.Float(cpa),
		TCPA:      sensor.Float(tcpa),
		Distance:  sensor.Float(distNM),
	}
	if identified {
		r.MMSI = t.mmsi
		r.Name = t.name
		r.VesselType = t.vesselType
	}
	return r
}

// approach estimates CPA (NM) and TCPA (minutes) from the relative speed
// between own ship and the target, via the law of cosines over the course
// difference.
func (g *Generator) approach(t trafficTarget, distNM float64) (float64, float64) {
	dc := (t.course - g.course) * math.Pi / 180
	rel := math.Sqrt(g.speed*g.speed + t.speed*t.speed - 2*g.speed*t.speed*math.Cos(dc))
	if rel < 0.1 {
		return distNM, 999.9
	}
	tcpa := distNM / (rel / 60)
	if tcpa > 999.9 {
		tcpa = 999.9
	}
	cpa := distNM
	if tcpa < 30 {
		cpa = distNM * 0.5
	}
	return cpa, tcpa
}

func (g *Generator) weather() *sensor.WeatherReading {
	return &sensor.WeatherReading{
		WindSpeed:     sensor.Float(15 + g.gauss(2)),
		WindDirection: sensor.Float(270 + g.gauss(10)),
		Temperature:   sensor.Float(18 + g.gauss(1)),
		Pressure:      sensor.Float(1013 + g.gauss(5)),
		Visibility:    "good",
	}
}

func (g *Generator) engine() *sensor.EngineReading {
	return &sensor.EngineReading{
		RPM:         sensor.Float(1200 + g.gauss(50)),
		FuelRate:    sensor.Float(75 + g.gauss(2)),
		Temperature: sensor.Float(85 + g.gauss(5)),
		Status:      "normal",
	}
}

// tide follows a 12-minute sinusoid at one-second steps, which is fast
// enough to watch a full cycle during a demo.
func (g *Generator) tide() *sensor.TideReading {
	phase := 2 * math.Pi * float64(g.count) / 720
	state := "flood"
	if math.Cos(phase) < 0 {
		state = "ebb"
	}
	return &sensor.TideReading{
		Height: sensor.Float(2 * math.Sin(phase)),
		Type:   state,
	}
}

func (g *Generator) current() *sensor.CurrentReading {
	return &sensor.CurrentReading{
		Speed:     sensor.Float(1.5 + g.gauss(0.3)),
		Direction: sensor.Float(180 + g.gauss(15)),
	}
}

func (g *Generator) gauss(std float64) float64 {
	return g.rng.NormFloat64() * std
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
