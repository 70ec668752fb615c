package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/bwmarrin/snowflake"
)

var invoiceNode *snowflake.Node

// InitInvoiceNumbers sets the snowflake node used for invoice number suffixes.
// Each running instance needs its own node id.
func InitInvoiceNumbers(nodeID int64) error {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	invoiceNode = node
	return nil
}

// NewInvoiceNumber returns INV-<4 random digits>-<time ordered suffix>.
func NewInvoiceNumber() (string, error) {
	if invoiceNode == nil {
		if err := InitInvoiceNumbers(1); err != nil {
			return "", err
		}
	}
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%04d-%s", n.Int64()+1000, invoiceNode.Generate().Base36()), nil
}
