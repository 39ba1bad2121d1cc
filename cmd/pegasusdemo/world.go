package main

import (
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/pegasus"
	"github.com/gogpu/pegasus/backend/software"
	"github.com/gogpu/pegasus/schedule"
)

// world is the simulation shell.
type world struct {
	width, height float64
	x, y          float64
	vx, vy        float64
	radius        float64
	dt            float64
	frames        int
	limit         int
}

func newInit(width, height, frames int) pegasus.Init[*world] {
	return pegasus.Init[*world]{
		Start: func(pl *schedule.Planner[*world]) (*world, *schedule.Planner[*world]) {
			w := &world{
				width:  float64(width),
				height: float64(height),
				x:      float64(width) / 3,
				y:      float64(height) / 4,
				vx:     220,
				vy:     160,
				radius: float64(min(width, height)) / 10,
				limit:  frames,
			}
			pl.AddWithAccess(schedule.SystemFunc[*world](move), "move",
				schedule.Access{Writes: []string{"ball"}})
			pl.AddWithAccess(schedule.SystemFunc[*world](bounce), "bounce",
				schedule.Access{Writes: []string{"ball"}}, "move")
			return w, pl
		},
		Proceed: func(w *world, delta time.Duration) bool {
			// Long pauses are clamped to one 60 Hz step.
			w.dt = min(delta.Seconds(), 1.0/60)
			w.frames++
			return w.frames <= w.limit
		},
	}
}

func move(w *world) {
	w.x += w.vx * w.dt
	w.y += w.vy * w.dt
}

func bounce(w *world) {
	if w.x < w.radius || w.x > w.width-w.radius {
		w.vx = -w.vx
	}
	if w.y < w.radius || w.y > w.height-w.radius {
		w.vy = -w.vy
	}
}

func paintBall(w *world, c *software.Canvas) {
	c.ClearWithColor(gg.RGB(0.1, 0.15, 0.25))
	c.SetRGB(1, 0.6, 0.1)
	c.DrawCircle(w.x, w.y, w.radius)
	c.Fill()
}
