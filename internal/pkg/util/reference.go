package util

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateOrderID() uuid.UUID {
	return uuid.New()
}

// GeneratePaymentReference 人類可讀的gateway冪等鍵, 格式 MP_<訂單ID前8碼>_<unix>
func GeneratePaymentReference(orderID uuid.UUID) string {
	return fmt.Sprintf("MP_%s_%d", strings.ToUpper(hex.EncodeToString(orderID[:4])), time.Now().Unix())
}
