// Package fixtures generates test data and manages fixture and download files.
package fixtures

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	secondaryPrefixes = []string{"Apt.", "#", "Unit", "P.O. Box", "Suite", "Floor", "Room", "Department", "Building", "Lot"}
	seasons           = []string{"Spring", "Summer", "Fall", "Winter"}
)

// Generator produces random test data. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator with a fixed seed, for reproducible data
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

var defaultGenerator = NewGenerator(time.Now().UnixNano())

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// SecondaryAddress returns an address line such as "Suite 42"
func (g *Generator) SecondaryAddress() string {
	return fmt.Sprintf("%s %d", secondaryPrefixes[g.intn(len(secondaryPrefixes))], g.intn(999))
}

// Season returns one of the four seasons
func (g *Generator) Season() string {
	return seasons[g.intn(len(seasons))]
}

// UPC returns 12 random digits followed by their check digit
func (g *Generator) UPC() string {
	digits := make([]int, 12)
	for i := range digits {
		digits[i] = g.intn(10)
	}
	digits = append(digits, UPCCheckDigit(digits))

	var b strings.Builder
	for _, d := range digits {
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// UPCCheckDigit computes the check digit of 12 digits: digits at even
// positions weigh 3, the others 1.
func UPCCheckDigit(digits []int) int {
	var odd, even int
	for i, d := range digits {
		if i%2 == 0 {
			odd += d
		} else {
			even += d
		}
	}
	return (10 - (odd*3+even)%10) % 10
}

// ValidUPC reports whether code is 13 digits ending in the right check digit
func ValidUPC(code string) bool {
	if len(code) != 13 {
		return false
	}
	digits := make([]int, 0, 12)
	for _, r := range code[:12] {
		if r < '0' || r > '9' {
			return false
		}
		digits = append(digits, int(r-'0'))
	}
	last := code[12]
	return last >= '0' && last <= '9' && int(last-'0') == UPCCheckDigit(digits)
}

// SecondaryAddress returns an address line from the default generator
func SecondaryAddress() string { return defaultGenerator.SecondaryAddress() }

// Season returns a season from the default generator
func Season() string { return defaultGenerator.Season() }

// UPC returns a UPC from the default generator
func UPC() string { return defaultGenerator.UPC() }
