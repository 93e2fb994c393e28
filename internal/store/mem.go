package store

import (
	"context"
	"fmt"
	"sort"

	"airport-api/internal/airport"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// 文档注释：进程内记录库
// 背景：无数据库时（STORE_BACKEND=memory）与测试场景使用；codes 把每个代码映射到所属标识。
// 约束：Put 逐个以 SetIfAbsent 抢占代码，任一冲突即释放已抢占者，因此同一标识的并发创建只有一个成功。
// Update 未命中时会短暂写入空标识占位，读路径一律视其为不存在。
type MemStore struct {
	records cmap.ConcurrentMap[string, airport.Airport]
	codes   cmap.ConcurrentMap[string, string]
}

func NewMemStore() *MemStore {
	return &MemStore{records: cmap.New[airport.Airport](), codes: cmap.New[string]()}
}

func (m *MemStore) Put(_ context.Context, a airport.Airport) error {
	id, err := airport.IdentifierOf(a)
	if err != nil {
		return err
	}
	a.Identifier = id
	var claimed []string
	for _, c := range codesOf(a) {
		if !m.codes.SetIfAbsent(c, id) {
			m.release(claimed, id)
			return fmt.Errorf("%w: %s", airport.ErrDuplicateIdentifier, c)
		}
		claimed = append(claimed, c)
	}
	m.records.Set(id, a)
	return nil
}

func (m *MemStore) Get(_ context.Context, code string) (airport.Airport, error) {
	id, ok := m.codes.Get(code)
	if !ok {
		return airport.Airport{}, airport.ErrNotFound
	}
	a, ok := m.records.Get(id)
	if !ok || a.Identifier == "" {
		return airport.Airport{}, airport.ErrNotFound
	}
	return a, nil
}

func (m *MemStore) Update(_ context.Context, code string, p airport.Patch) (airport.Airport, airport.Airport, error) {
	id, ok := m.codes.Get(code)
	if !ok {
		return airport.Airport{}, airport.Airport{}, airport.ErrNotFound
	}
	var prev, next airport.Airport
	found := false
	m.records.Upsert(id, airport.Airport{}, func(exist bool, cur airport.Airport, _ airport.Airport) airport.Airport {
		if !exist || cur.Identifier == "" {
			return airport.Airport{}
		}
		found = true
		prev = cur
		next = p.Apply(cur)
		return next
	})
	if !found {
		m.records.RemoveCb(id, func(_ string, v airport.Airport, exists bool) bool {
			return exists && v.Identifier == ""
		})
		return airport.Airport{}, airport.Airport{}, airport.ErrNotFound
	}
	return prev, next, nil
}

func (m *MemStore) Delete(_ context.Context, code string) (airport.Airport, error) {
	id, ok := m.codes.Get(code)
	if !ok {
		return airport.Airport{}, airport.ErrNotFound
	}
	var removed airport.Airport
	ok = m.records.RemoveCb(id, func(_ string, v airport.Airport, exists bool) bool {
		if exists && v.Identifier != "" {
			removed = v
			return true
		}
		return false
	})
	if !ok {
		return airport.Airport{}, airport.ErrNotFound
	}
	m.release(codesOf(removed), id)
	return removed, nil
}

// List: 按标识排序，便于输出稳定
func (m *MemStore) List(_ context.Context) ([]airport.Airport, error) {
	out := make([]airport.Airport, 0, m.records.Count())
	for _, a := range m.records.Items() {
		if a.Identifier != "" {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func (m *MemStore) Clear(_ context.Context) error {
	m.records.Clear()
	m.codes.Clear()
	return nil
}

// release：仅释放仍归属 id 的代码
func (m *MemStore) release(codes []string, id string) {
	for _, c := range codes {
		m.codes.RemoveCb(c, func(_ string, owner string, exists bool) bool {
			return exists && owner == id
		})
	}
}

// codesOf：按字典序返回，所有写入者以同一顺序占用代码，交叉代码的并发 Put 至少一方成功
func codesOf(a airport.Airport) []string {
	var out []string
	if a.IATACode != "" {
		out = append(out, a.IATACode)
	}
	if a.ICAO != "" && a.ICAO != a.IATACode {
		out = append(out, a.ICAO)
	}
	sort.Strings(out)
	return out
}
