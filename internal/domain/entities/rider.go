package entities

import "time"

// Rider is the durable record for one registered HUD client. Telemetry
// fields are pointers so that "never reported" is distinguishable from a
// reported zero — an empty trail string is a real value, a nil trail means
// the rider has never told us what run they are on.
type Rider struct {
	ID         string    `json:"user_id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	LastUpdate time.Time `json:"last_update"`

	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
	Alt   *float64 `json:"alt,omitempty"`
	Trail *string  `json:"trail,omitempty"`

	Speed     *float64 `json:"speed,omitempty"`
	GForce    *float64 `json:"g_force,omitempty"`
	MaxSpeed  *float64 `json:"max_speed,omitempty"`
	MaxGForce *float64 `json:"max_g_force,omitempty"`
}

// NewRider creates a freshly registered rider: active, no telemetry yet,
// liveness timestamp set to now.
func NewRider(id, name string) *Rider {
	return &Rider{
		ID:         id,
		Name:       name,
		Active:     true,
		LastUpdate: time.Now(),
	}
}

// Clone returns a deep copy. Repositories hand out clones so callers can
// never mutate stored state behind the engine's back.
func (r *Rider) Clone() *Rider {
	c := *r
	c.Lat = copyFloat(r.Lat)
	c.Lon = copyFloat(r.Lon)
	c.Alt = copyFloat(r.Alt)
	c.Trail = copyString(r.Trail)
	c.Speed = copyFloat(r.Speed)
	c.GForce = copyFloat(r.GForce)
	c.MaxSpeed = copyFloat(r.MaxSpeed)
	c.MaxGForce = copyFloat(r.MaxGForce)
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
