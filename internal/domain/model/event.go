// Package model contains domain models passed between layers.
package model

import "time"

// Point is a 2D pixel coordinate, serialized as a JSON array [x, y]
// to match the detector's wire format.
type Point [2]float64

// X returns the horizontal coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the vertical coordinate.
func (p Point) Y() float64 { return p[1] }

// Zone is an oriented boundary segment configured on a platform.
// The endpoint order is significant: it fixes which side of the line
// counts as "loaded". P1 and P2 must be distinct.
type Zone struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Detection is a single tracked object in one frame, as produced by the
// external detector. TrackID is stable only within a platform session.
type Detection struct {
	TrackID int        `json:"trackId"`
	Box     [4]float64 `json:"box"`
	Conf    float64    `json:"conf"`
	Center  Point      `json:"center"`
}

// Centroid returns the detection's centre point, falling back to the
// box midpoint when the detector did not fill Center.
func (d Detection) Centroid() Point {
	if d.Center != (Point{}) {
		return d.Center
	}
	return Point{(d.Box[0] + d.Box[2]) / 2, (d.Box[1] + d.Box[3]) / 2}
}

// DetectionBatch is one processed frame's worth of detections for a
// platform. Zones may be carried inline (the camera relay embeds the
// platform's zone map in every frame payload); when empty the stored
// zone configuration is used instead. BatchID is optional and enables
// idempotent delivery from at-least-once publishers.
type DetectionBatch struct {
	BatchID    string          `json:"batchId,omitempty"`
	Platform   string          `json:"platform"`
	Zones      map[string]Zone `json:"zones,omitempty"`
	Detections []Detection     `json:"detections"`
}

// CrossingEvent is an immutable fact: one track crossed one zone
// boundary once. Timestamp is persisted as epoch seconds.
type CrossingEvent struct {
	Platform  string    `json:"platform"`
	Zone      string    `json:"zone"`
	Direction string    `json:"direction"`
	Qty       int       `json:"qty"`
	Timestamp time.Time `json:"-"`
}

// Unix returns the event timestamp as epoch seconds, the shape stored
// in the durable log.
func (e CrossingEvent) Unix() int64 { return e.Timestamp.Unix() }

// RealtimeCount is the payload pushed to live subscribers on a
// crossing. It deliberately carries no timestamp: subscribers treat
// arrival time as event time.
type RealtimeCount struct {
	Platform  string `json:"platform"`
	Zone      string `json:"zone"`
	Direction string `json:"direction"`
	Qty       int    `json:"qty"`
}
