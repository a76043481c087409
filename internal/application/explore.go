package application

import (
	"github.com/lf-go/pretsched/internal/domain"
)

// Explorer runs the discrete-event state-space exploration over an
// elaborated instance tree (§4.2).
type Explorer struct {
	main *domain.ReactorInstance
}

// NewExplorer returns an Explorer over the given main reactor instance.
func NewExplorer(main *domain.ReactorInstance) *Explorer {
	return &Explorer{main: main}
}

// Explore simulates forward from the initial events determined by mode
// until horizon is exceeded, the queue empties, or a loop is detected
// (§4.2's public contract: explore(main, horizon, mode) → StateSpaceDiagram).
func (ex *Explorer) Explore(horizon domain.Tag, mode domain.ExplorationMode) (*domain.StateSpaceDiagram, error) {
	queue := domain.NewEventQueue()
	ex.seedInitialEvents(queue, mode, horizon)

	diagram := &domain.StateSpaceDiagram{Mode: mode}

	var previousTag domain.Tag
	var currentNode *domain.StateSpaceNode
	finalized := make(map[string]*domain.StateSpaceNode)
	first := true

	for queue.Len() > 0 {
		minTag, _ := queue.PeekTag()
		if !horizon.IsForever() && minTag.After(horizon) {
			break
		}

		batch := queue.PopAllAtMinTag()
		currentTag := batch[0].Tag

		invoked := ex.reactionsFor(batch)
		ex.scheduleSuccessors(queue, batch, invoked, currentTag)

		if first {
			currentNode = &domain.StateSpaceNode{Tag: currentTag}
			first = false
		} else if currentTag.Timestamp > previousTag.Timestamp {
			if err := finalizeNode(diagram, finalized, currentNode); err != nil {
				return nil, err
			}
			if diagram.HasLoop() {
				return diagram, nil
			}
			currentNode = &domain.StateSpaceNode{Tag: currentTag}
		}
		// microstep-only advance: merge into the existing node below.

		currentNode.ReactionsInvoked = append(currentNode.ReactionsInvoked, invoked...)
		currentNode.QueueSnapshot = queue.Snapshot()
		previousTag = currentTag
	}

	if currentNode != nil {
		currentNode.QueueSnapshot = queue.Snapshot()
		if err := finalizeNode(diagram, finalized, currentNode); err != nil {
			return nil, err
		}
	}

	return diagram, nil
}

// finalizeNode hashes node, appends it to the diagram, links it to the
// previous tail, and records a loop if the hash matches a prior node
// (§4.2's node-creation rule).
func finalizeNode(diagram *domain.StateSpaceDiagram, finalized map[string]*domain.StateSpaceNode, node *domain.StateSpaceNode) error {
	key := node.HashKey()

	if diagram.Head == nil {
		diagram.Head = node
	} else {
		diagram.Tail.AddEdge(node)
	}
	diagram.Nodes = append(diagram.Nodes, node)
	diagram.Tail = node

	if prior, ok := finalized[key]; ok {
		diagram.LoopNode = prior
		diagram.LoopNodeNext = node
		diagram.Hyperperiod = node.Tag.Timestamp - prior.Tag.Timestamp
		prior.AddEdge(node)
		return nil
	}
	finalized[key] = node
	return nil
}

// seedInitialEvents enqueues the mode-specific initial event set (§4.2
// "Initial events").
func (ex *Explorer) seedInitialEvents(queue *domain.EventQueue, mode domain.ExplorationMode, timeout domain.Tag) {
	switch mode {
	case domain.InitAndPeriodic:
		queue.Push(domain.Event{Trigger: domain.TriggerRef{Kind: domain.TriggerStartup}, Tag: domain.ZeroTag})
		for _, t := range ex.main.AllTimers() {
			queue.Push(domain.Event{Trigger: t.TriggerRef(), Tag: domain.Tag{Timestamp: t.Offset, Microstep: 0}})
		}

	case domain.ShutdownTimeout:
		queue.Push(domain.Event{Trigger: domain.TriggerRef{Kind: domain.TriggerShutdown}, Tag: domain.ZeroTag})
		for _, t := range ex.main.AllTimers() {
			if t.Period <= 0 {
				continue
			}
			// Fire at shutdown iff (timeout - offset) is a nonnegative
			// integer multiple of the period (§4.2).
			diff := timeout.Timestamp - t.Offset
			if diff >= 0 && diff%t.Period == 0 {
				queue.Push(domain.Event{Trigger: t.TriggerRef(), Tag: domain.ZeroTag})
			}
		}
		for _, p := range ex.main.AllInputPorts() {
			queue.Push(domain.Event{Trigger: p.TriggerRef(), Tag: domain.ZeroTag})
		}
		for _, a := range ex.main.AllActions() {
			if a.Origin == domain.LogicalOrigin {
				queue.Push(domain.Event{Trigger: a.TriggerRef(), Tag: domain.ZeroTag})
			}
		}

	case domain.ShutdownStarvation:
		queue.Push(domain.Event{Trigger: domain.TriggerRef{Kind: domain.TriggerShutdown}, Tag: domain.ZeroTag})
	}
}

// reactionsFor computes the union, over every event in batch, of reactions
// that depend on that event's trigger (§4.2 step 2).
func (ex *Explorer) reactionsFor(batch []domain.Event) []*domain.ReactionInstance {
	all := ex.main.AllReactions()
	seen := make(map[*domain.ReactionInstance]bool)
	var out []*domain.ReactionInstance
	for _, e := range batch {
		for _, r := range all {
			if seen[r] {
				continue
			}
			if r.TriggeredBy(e.Trigger) {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// scheduleSuccessors enqueues the events produced by this step: timer
// successors, port-effect propagation through connection delays, and
// action-effect rescheduling (§4.2 step 3).
func (ex *Explorer) scheduleSuccessors(queue *domain.EventQueue, batch []domain.Event, invoked []*domain.ReactionInstance, now domain.Tag) {
	for _, e := range batch {
		if e.Trigger.Kind != domain.TriggerTimer {
			continue
		}
		if t := findTimer(ex.main, e.Trigger.Path); t != nil && t.Period > 0 {
			queue.Push(domain.Event{
				Trigger: e.Trigger,
				Tag:     domain.Tag{Timestamp: now.Timestamp + t.Period, Microstep: 0},
			})
		}
	}

	for _, r := range invoked {
		for _, port := range r.EffectPorts {
			owner := port.Owner
			edges := owner.ConnectionMap[port]
			if owner.Parent != nil {
				edges = append(edges, owner.Parent.ConnectionMap[port]...)
			}
			for _, edge := range edges {
				queue.Push(domain.Event{
					Trigger: edge.Destination.TriggerRef(),
					Tag:     domain.Tag{Timestamp: now.Timestamp + edge.Delay, Microstep: 0},
				})
			}
		}
		for _, action := range r.EffectActions {
			if action.Origin != domain.LogicalOrigin {
				continue
			}
			tag := domain.Tag{Timestamp: now.Timestamp + action.MinimumDelay, Microstep: 0}
			if action.MinimumDelay == 0 {
				tag = now.WithMicrostepIncrement()
			}
			queue.Push(domain.Event{Trigger: action.TriggerRef(), Tag: tag})
		}
	}
}

func findTimer(root *domain.ReactorInstance, path string) *domain.TimerInstance {
	for _, t := range root.AllTimers() {
		if t.Path() == path {
			return t
		}
	}
	return nil
}
