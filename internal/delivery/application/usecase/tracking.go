package usecase

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// TrackingCodes генерирует уникальные трек-коды на основе snowflake ID
type TrackingCodes struct {
	node *snowflake.Node
}

// NewTrackingCodes создает генератор трек-кодов для указанного узла
func NewTrackingCodes(nodeID int64) (*TrackingCodes, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node: %w", err)
	}
	return &TrackingCodes{node: node}, nil
}

// Generate возвращает трек-код вида DLV-XXXXXXXXX
func (t *TrackingCodes) Generate() string {
	return "DLV-" + strings.ToUpper(t.node.Generate().Base36())
}
