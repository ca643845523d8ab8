package company

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// DefaultSites は設定が無い場合に利用するシャーディング先のサイト一覧です。
var DefaultSites = []string{"Bravo", "Hotel", "Lima"}

// SiteSelector は n 個の候補から 1 つを選びます。戻り値は [0, n) のインデックスです。
type SiteSelector interface {
	Pick(n int) int
}

// SitePolicy は保存時のサイト割り当て方針です。
type SitePolicy string

const (
	// SitePolicyReassign は保存のたびにサイトを選び直します。
	SitePolicyReassign SitePolicy = "reassign"
	// SitePolicySticky は作成時のみサイトを割り当て、更新時は既存のサイトを維持します。
	SitePolicySticky SitePolicy = "sticky"
)

// ParseSitePolicy は文字列から SitePolicy を解釈します。空文字は SitePolicyReassign です。
func ParseSitePolicy(raw string) (SitePolicy, error) {
	switch SitePolicy(raw) {
	case "", SitePolicyReassign:
		return SitePolicyReassign, nil
	case SitePolicySticky:
		return SitePolicySticky, nil
	default:
		return "", fmt.Errorf("unknown site policy %q", raw)
	}
}

// RandomSelector は一様乱数でサイトを選ぶ SiteSelector です。
type RandomSelector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSelector はグローバルな乱数源を使う RandomSelector を生成します。
func NewRandomSelector() *RandomSelector {
	return &RandomSelector{}
}

// NewSeededSelector は seed から決定的な系列を返す RandomSelector を生成します。
func NewSeededSelector(seed uint64) *RandomSelector {
	return &RandomSelector{rnd: rand.New(rand.NewPCG(seed, seed))}
}

// Pick は [0, n) から一様に 1 つ選びます。
func (s *RandomSelector) Pick(n int) int {
	if s.rnd == nil {
		return rand.IntN(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// Sharding はサイト割り当てに関する設定をまとめます。
type Sharding struct {
	Sites    []string
	Selector SiteSelector
	Policy   SitePolicy
}

type siteAssigner struct {
	sites    []string
	selector SiteSelector
	policy   SitePolicy
}

func newSiteAssigner(cfg Sharding) *siteAssigner {
	sites := cfg.Sites
	if len(sites) == 0 {
		sites = DefaultSites
	}
	selector := cfg.Selector
	if selector == nil {
		selector = NewRandomSelector()
	}
	policy := cfg.Policy
	if policy == "" {
		policy = SitePolicyReassign
	}
	return &siteAssigner{
		sites:    append([]string(nil), sites...),
		selector: selector,
		policy:   policy,
	}
}

// assign は candidate の SiteID を上書きします。
func (a *siteAssigner) assign(candidate, existing *Company) {
	if a.policy == SitePolicySticky && existing != nil && existing.SiteID != nil {
		site := *existing.SiteID
		candidate.SiteID = &site
		return
	}
	site := a.sites[a.selector.Pick(len(a.sites))]
	candidate.SiteID = &site
}
