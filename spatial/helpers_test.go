package spatial

import (
	"math/rand"

	"github.com/akmonengine/overlap/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

type testItem struct {
	id  int
	box geometry.AABB
}

func testBox(item any) geometry.AABB {
	return item.(*testItem).box
}

func createTestItem(id int, center, halfExtents mgl64.Vec3) *testItem {
	return &testItem{
		id:  id,
		box: geometry.AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)},
	}
}

// randomItems scatters small boxes, some of them flat, inside [-50, 50]^3
func randomItems(rng *rand.Rand, count int) []*testItem {
	items := make([]*testItem, count)
	for i := range items {
		center := mgl64.Vec3{rng.Float64()*90 - 45, rng.Float64()*90 - 45, rng.Float64()*90 - 45}
		half := mgl64.Vec3{rng.Float64() * 4, rng.Float64() * 4, rng.Float64() * 4}
		if i%5 == 0 {
			half[i%3] = 0
		}
		items[i] = createTestItem(i, center, half)
	}
	return items
}

func containsItem(found []any, item *testItem) bool {
	for _, f := range found {
		if f == any(item) {
			return true
		}
	}
	return false
}

var worldBounds = geometry.AABB{Min: mgl64.Vec3{-50, -50, -50}, Max: mgl64.Vec3{50, 50, 50}}
