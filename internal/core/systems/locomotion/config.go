package locomotion

import (
	"fmt"
	"time"
)

// Config holds the tuning constants of the controller.
type Config struct {
	// Movement
	BaseSpeed        float64 `json:"base_speed" yaml:"base_speed"`
	BoostMultiplier  float64 `json:"boost_multiplier" yaml:"boost_multiplier"`
	MotionBlend      float64 `json:"motion_blend" yaml:"motion_blend"`
	TriedToMoveSq    float64 `json:"tried_to_move_sq" yaml:"tried_to_move_sq"`
	LandingTolerance float64 `json:"landing_tolerance" yaml:"landing_tolerance"`

	// Jump
	JumpImpulse   float64 `json:"jump_impulse" yaml:"jump_impulse"`
	Gravity       float64 `json:"gravity" yaml:"gravity"`
	LandingMargin float64 `json:"landing_margin" yaml:"landing_margin"`

	// Waypoints
	AverageTravelSpeed float64       `json:"average_travel_speed" yaml:"average_travel_speed"`
	CueThreshold       time.Duration `json:"cue_threshold" yaml:"cue_threshold"`
	LerpInImmersive    bool          `json:"lerp_in_immersive" yaml:"lerp_in_immersive"`
	WaypointPoolSize   int           `json:"waypoint_pool_size" yaml:"waypoint_pool_size"`

	// Rig
	ForwardOffset    float64 `json:"forward_offset" yaml:"forward_offset"`
	DefaultEyeHeight float64 `json:"default_eye_height" yaml:"default_eye_height"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		BaseSpeed:          3.2,
		BoostMultiplier:    2,
		MotionBlend:        0.85,
		TriedToMoveSq:      1e-6,
		LandingTolerance:   0.5,
		JumpImpulse:        6,
		Gravity:            9.8,
		LandingMargin:      0.2,
		AverageTravelSpeed: 50,
		CueThreshold:       100 * time.Millisecond,
		WaypointPoolSize:   4,
		ForwardOffset:      -0.15,
		DefaultEyeHeight:   1.6,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.BaseSpeed <= 0 {
		return fmt.Errorf("base speed must be positive, got %v", c.BaseSpeed)
	}
	if c.BoostMultiplier < 1 {
		return fmt.Errorf("boost multiplier must be at least 1, got %v", c.BoostMultiplier)
	}
	if c.MotionBlend < 0 || c.MotionBlend >= 1 {
		return fmt.Errorf("motion blend must be in [0, 1), got %v", c.MotionBlend)
	}
	if c.JumpImpulse <= 0 || c.Gravity <= 0 {
		return fmt.Errorf("jump impulse and gravity must be positive")
	}
	if c.LandingMargin < 0 || c.LandingTolerance < 0 {
		return fmt.Errorf("landing margin and tolerance must not be negative")
	}
	if c.AverageTravelSpeed <= 0 {
		return fmt.Errorf("average travel speed must be positive, got %v", c.AverageTravelSpeed)
	}
	if c.WaypointPoolSize < 1 {
		return fmt.Errorf("waypoint pool size must be at least 1, got %d", c.WaypointPoolSize)
	}
	if c.DefaultEyeHeight <= 0 {
		return fmt.Errorf("default eye height must be positive, got %v", c.DefaultEyeHeight)
	}
	return nil
}
