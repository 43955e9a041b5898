// Package sensor defines the raw multi-sensor snapshot consumed by the
// awareness pipeline. Any sensor block may be absent, and any field inside a
// block may be absent; absence is never an error.
package sensor

// Snapshot is one batch of raw sensor readings keyed by sensor.
type Snapshot struct {
	GPS     *GPSReading     `json:"gps,omitempty"`
	AIS     *AISReading     `json:"ais,omitempty"`
	Radar   *RadarReading   `json:"radar,omitempty"`
	Weather *WeatherReading `json:"weather,omitempty"`
	Engine  *EngineReading  `json:"engine,omitempty"`
	Tide    *TideReading    `json:"tide,omitempty"`
	Current *CurrentReading `json:"current,omitempty"`
}

// Reading is the common surface of all sensor blocks.
type Reading interface {
	// FieldCount reports how many fields the sensor populated, used as a
	// crude data-completeness score.
	FieldCount() int
}

// Readings returns the present sensor blocks keyed by sensor name.
func (s *Snapshot) Readings() map[string]Reading {
	out := make(map[string]Reading)
	if s.GPS != nil {
		out["gps"] = s.GPS
	}
	if s.AIS != nil {
		out["ais"] = s.AIS
	}
	if s.Radar != nil {
		out["radar"] = s.Radar
	}
	if s.Weather != nil {
		out["weather"] = s.Weather
	}
	if s.Engine != nil {
		out["engine"] = s.Engine
	}
	if s.Tide != nil {
		out["tide"] = s.Tide
	}
	if s.Current != nil {
		out["current"] = s.Current
	}
	return out
}

// GPSReading is a GNSS fix.
type GPSReading struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`  // knots
	Course    *float64 `json:"course,omitempty"` // degrees
	Timestamp string   `json:"timestamp,omitempty"`
}

func (g *GPSReading) FieldCount() int {
	n := countFloats(g.Latitude, g.Longitude, g.Speed, g.Course)
	if g.Timestamp != "" {
		n++
	}
	return n
}

// HasPosition reports whether both coordinates are present.
func (g *GPSReading) HasPosition() bool {
	return g.Latitude != nil && g.Longitude != nil
}

// AISReading is the own-ship AIS report plus nearby AIS targets.
type AISReading struct {
	MMSI      string          `json:"mmsi,omitempty"`
	Latitude  *float64        `json:"latitude,omitempty"`
	Longitude *float64        `json:"longitude,omitempty"`
	Speed     *float64        `json:"speed,omitempty"`   // knots
	Course    *float64        `json:"course,omitempty"`  // degrees
	Heading   *float64        `json:"heading,omitempty"` // degrees
	ROT       *float64        `json:"rot,omitempty"`     // degrees per minute
	Timestamp string          `json:"timestamp,omitempty"`
	Targets   []TargetReading `json:"targets,omitempty"`
}

func (a *AISReading) FieldCount() int {
	n := countFloats(a.Latitude, a.Longitude, a.Speed, a.Course, a.Heading, a.ROT)
	if a.MMSI != "" {
		n++
	}
	if a.Timestamp != "" {
		n++
	}
	if len(a.Targets) > 0 {
		n++
	}
	return n
}

// HasPosition reports whether both coordinates are present.
func (a *AISReading) HasPosition() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// RadarReading carries the radar's own-ship echo and its target contacts.
type RadarReading struct {
	OwnShip *OwnShipReading `json:"own_ship,omitempty"`
	Targets []TargetReading `json:"targets,omitempty"`
}

func (r *RadarReading) FieldCount() int {
	n := 0
	if r.OwnShip != nil {
		n++
	}
	if len(r.Targets) > 0 {
		n++
	}
	return n
}

// HasPosition reports whether the own-ship echo has both coordinates.
func (r *RadarReading) HasPosition() bool {
	return r.OwnShip != nil && r.OwnShip.Latitude != nil && r.OwnShip.Longitude != nil
}

// OwnShipReading is the radar-derived own-ship position.
type OwnShipReading struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// TargetReading is a single target contact from AIS or radar.
type TargetReading struct {
	MMSI       string   `json:"mmsi,omitempty"`
	Name       string   `json:"name,omitempty"`
	VesselType string   `json:"vessel_type,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Speed      *float64 `json:"speed,omitempty"`
	Course     *float64 `json:"course,omitempty"`
	Bearing    *float64 `json:"bearing,omitempty"`
	CPA        *float64 `json:"cpa,omitempty"`      // nautical miles
	TCPA       *float64 `json:"tcpa,omitempty"`     // minutes
	Distance   *float64 `json:"distance,omitempty"` // nautical miles
}

// HasPosition reports whether both coordinates are present.
func (t *TargetReading) HasPosition() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// WeatherReading is the meteorological sensor block.
type WeatherReading struct {
	WindSpeed     *float64 `json:"wind_speed,omitempty"` // knots
	WindDirection *float64 `json:"wind_direction,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Pressure      *float64 `json:"pressure,omitempty"`
	Visibility    string   `json:"visibility,omitempty"`
}

func (w *WeatherReading) FieldCount() int {
	n := countFloats(w.WindSpeed, w.WindDirection, w.Temperature, w.Pressure)
	if w.Visibility != "" {
		n++
	}
	return n
}

// Map returns the populated fields for environment pass-through.
func (w *WeatherReading) Map() map[string]any {
	m := make(map[string]any)
	putFloat(m, "wind_speed", w.WindSpeed)
	putFloat(m, "wind_direction", w.WindDirection)
	putFloat(m, "temperature", w.Temperature)
	putFloat(m, "pressure", w.Pressure)
	if w.Visibility != "" {
		m["visibility"] = w.Visibility
	}
	return m
}

// EngineReading is the engine monitoring block.
type EngineReading struct {
	RPM         *float64 `json:"rpm,omitempty"`
	FuelRate    *float64 `json:"fuel_rate,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Status      string   `json:"status,omitempty"`
}

func (e *EngineReading) FieldCount() int {
	n := countFloats(e.RPM, e.FuelRate, e.Temperature)
	if e.Status != "" {
		n++
	}
	return n
}

// TideReading is the tide gauge block.
type TideReading struct {
	Height *float64 `json:"height,omitempty"` // meters
	Type   string   `json:"type,omitempty"`   // flood or ebb
}

func (t *TideReading) FieldCount() int {
	n := countFloats(t.Height)
	if t.Type != "" {
		n++
	}
	return n
}

// Map returns the populated fields for environment pass-through.
func (t *TideReading) Map() map[string]any {
	m := make(map[string]any)
	putFloat(m, "height", t.Height)
	if t.Type != "" {
		m["type"] = t.Type
	}
	return m
}

// CurrentReading is the water-current block.
type CurrentReading struct {
	Speed     *float64 `json:"speed,omitempty"` // knots
	Direction *float64 `json:"direction,omitempty"`
}

func (c *CurrentReading) FieldCount() int {
	return countFloats(c.Speed, c.Direction)
}

// Map returns the populated fields for environment pass-through.
func (c *CurrentReading) Map() map[string]any {
	m := make(map[string]any)
	putFloat(m, "speed", c.Speed)
	putFloat(m, "direction", c.Direction)
	return m
}

// Float is a convenience constructor for optional fields in literals.
func Float(v float64) *float64 { return &v }

func countFloats(fields ...*float64) int {
	n := 0
	for _, f := range fields {
		if f != nil {
			n++
		}
	}
	return n
}

func putFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}
