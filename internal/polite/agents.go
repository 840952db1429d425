package polite

import "sync"

// AgentPool hands out user agents round-robin.
type AgentPool struct {
	mu     sync.Mutex
	agents []string
	idx    int
}

func NewAgentPool(agents ...string) *AgentPool {
	if len(agents) == 0 {
		agents = defaultAgents
	}
	return &AgentPool{agents: agents}
}

func (p *AgentPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	a := p.agents[p.idx%len(p.agents)]
	p.idx++
	return a
}

var defaultAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0",
}
