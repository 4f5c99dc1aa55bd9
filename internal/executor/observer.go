package executor

import (
	"github.com/krakenbuild/kraken/internal/graph"
	krakenlog "github.com/krakenbuild/kraken/internal/logger"
	"github.com/krakenbuild/kraken/internal/task"
)

// Observer is notified at the boundaries of a graph execution, letting a
// caller report progress without the GraphExecutor knowing how progress is
// reported.
type Observer interface {
	BeforeExecuteGraph(g *graph.TaskGraph)
	AfterExecuteGraph(g *graph.TaskGraph)
	BeforePrepareTask(t *task.Task)
	AfterPrepareTask(t *task.Task, status task.Status)
	BeforeExecuteTask(t *task.Task)
	AfterExecuteTask(t *task.Task, status task.Status)
}

// NopObserver discards every notification. Used where the caller does not
// need progress reporting, e.g. in tests.
type NopObserver struct{}

func (NopObserver) BeforeExecuteGraph(*graph.TaskGraph)      {}
func (NopObserver) AfterExecuteGraph(*graph.TaskGraph)       {}
func (NopObserver) BeforePrepareTask(*task.Task)             {}
func (NopObserver) AfterPrepareTask(*task.Task, task.Status) {}
func (NopObserver) BeforeExecuteTask(*task.Task)             {}
func (NopObserver) AfterExecuteTask(*task.Task, task.Status) {}

// LoggingObserver reports graph and task boundaries through a structured
// logger, one line per task completion plus a start/end pair for the graph.
type LoggingObserver struct {
	logger *krakenlog.Logger
}

// NewLoggingObserver builds an Observer that logs through l.
func NewLoggingObserver(l *krakenlog.Logger) *LoggingObserver {
	return &LoggingObserver{logger: l}
}

func (o *LoggingObserver) BeforeExecuteGraph(g *graph.TaskGraph) {
	o.logger.WithFields(map[string]any{"tasks": len(g.Tasks(graph.TaskFilter{}))}).Info("build started")
}

func (o *LoggingObserver) AfterExecuteGraph(g *graph.TaskGraph) {
	failed := g.Tasks(graph.TaskFilter{Failed: true})
	if len(failed) == 0 {
		o.logger.Info("build finished")
		return
	}
	paths := make([]string, 0, len(failed))
	for _, t := range failed {
		paths = append(paths, t.Path())
	}
	o.logger.WithFields(map[string]any{"failed": paths}).Warn("build finished with failures")
}

func (o *LoggingObserver) BeforePrepareTask(t *task.Task) {
	o.logger.WithFields(map[string]any{"task": t.Path()}).Debug("preparing")
}

func (o *LoggingObserver) AfterPrepareTask(t *task.Task, status task.Status) {
	o.logger.WithFields(map[string]any{"task": t.Path(), "status": string(status.Type)}).Debug("prepared")
}

func (o *LoggingObserver) BeforeExecuteTask(t *task.Task) {
	o.logger.WithFields(map[string]any{"task": t.Path()}).Debug("executing")
}

func (o *LoggingObserver) AfterExecuteTask(t *task.Task, status task.Status) {
	log := o.logger.WithFields(map[string]any{"task": t.Path(), "status": string(status.Type)})
	if status.IsFailed() {
		log.Error(nil, status.Message)
		return
	}
	log.Info(status.String())
}
