package tasks

// TaskSchedulerInterface is the periodic mode used by `disc serve`: a ticker
// enqueues a batch run, and Trigger asks for one immediately.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Trigger() error
	LastReport() *Report
}
