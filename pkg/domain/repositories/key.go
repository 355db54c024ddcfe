package repositories

import (
	"strconv"
	"strings"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

func formatKey(productID entities.ProductID, technology int64, warehouses []int64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(productID), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(technology, 10))
	b.WriteByte('|')
	for i, id := range warehouses {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
