// Package schedule runs a graph of named work units once per dispatch.
//
// A Planner collects units together with the names of the units they depend
// on and, optionally, the names of the data they read and write. Build turns
// the plan into a Dispatcher whose stages respect both: a unit always runs in
// a later stage than its dependencies, and two units that touch the same data
// with at least one writer never share a stage.
//
//	p := schedule.NewPlanner[*World]()
//	p.Add(schedule.SystemFunc[*World](integrate), "physics")
//	p.AddWithAccess(drawSys, "draw", schedule.Access{Reads: []string{"bodies"}}, "physics")
//
//	d, err := p.Build(schedule.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	for running {
//	    d.Dispatch(world)
//	}
//
// Units of one stage run concurrently when the dispatcher has more than one
// worker. With the default single worker every unit runs on the goroutine
// calling Dispatch, in stage order.
package schedule
