package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered unique ID for runs and sessions.
// It panics if Init has not been called.
func New() int64 {
	if node == nil {
		panic("id: New called before Init")
	}
	return node.Generate().Int64()
}

// Parse converts the decimal form used in URLs back into an ID.
func Parse(s string) (int64, error) {
	sf, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	return sf.Int64(), nil
}
