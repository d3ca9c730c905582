package studio

import (
	"sort"
	"sync"
)

// Action 会发起后端请求的用户操作
type Action string

const (
	ActionChat    Action = "chat"
	ActionGrammar Action = "grammar"
	ActionStyle   Action = "style"
	ActionImage   Action = "image"
)

// inflightGuard 每个 (会话, 操作) 同时至多一个未完成请求
type inflightGuard struct {
	mu      sync.Mutex
	pending map[string]map[Action]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{pending: make(map[string]map[Action]struct{})}
}

// acquire 成功时返回释放函数
func (g *inflightGuard) acquire(sessionID string, action Action) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	actions, ok := g.pending[sessionID]
	if !ok {
		actions = make(map[Action]struct{})
		g.pending[sessionID] = actions
	}
	if _, busy := actions[action]; busy {
		return nil, false
	}
	actions[action] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() { g.release(sessionID, action) })
	}, true
}

func (g *inflightGuard) release(sessionID string, action Action) {
	g.mu.Lock()
	defer g.mu.Unlock()

	actions := g.pending[sessionID]
	delete(actions, action)
	if len(actions) == 0 {
		delete(g.pending, sessionID)
	}
}

// list 返回会话当前未完成的操作
func (g *inflightGuard) list(sessionID string) []Action {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Action, 0, len(g.pending[sessionID]))
	for a := range g.pending[sessionID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sessionLocks 按会话 id 分配互斥锁，无人持有时回收
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*refMutex)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
