package log

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// audit is a narrow, append-only trail of redelivery and dead-letter
// decisions. It's kept separate from the zerolog operational stream
// because it's read by a different audience (compliance/ops reviewing
// message loss, not engineers tailing debug output) and at much lower
// volume.
var audit = logrus.New()

var auditOnce sync.Once

// ConfigureAudit points the redelivery/DLQ audit trail at path, encoding
// entries as JSON lines. Safe to call once at startup; subsequent calls
// are no-ops.
func ConfigureAudit(path string) error {
	var err error
	auditOnce.Do(func() {
		audit.SetFormatter(&logrus.JSONFormatter{})
		if path == "" {
			return
		}
		var f *os.File
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		audit.SetOutput(f)
	})
	return err
}

// AuditRedelivery records that a message was redelivered, including how
// many times it has now been redelivered.
func AuditRedelivery(topic, subscription string, ledgerID, entryID uint64, redeliveryCount uint32) {
	audit.WithFields(logrus.Fields{
		"topic":            topic,
		"subscription":     subscription,
		"ledgerId":         ledgerID,
		"entryId":          entryID,
		"redeliveryCount":  redeliveryCount,
		"event":            "redelivered",
	}).Info("message redelivered")
}

// AuditDeadLettered records that a message exceeded its redelivery
// threshold and was forwarded to the dead letter topic.
func AuditDeadLettered(topic, subscription, dlqTopic string, ledgerID, entryID uint64, redeliveryCount uint32) {
	audit.WithFields(logrus.Fields{
		"topic":           topic,
		"subscription":    subscription,
		"dlqTopic":        dlqTopic,
		"ledgerId":        ledgerID,
		"entryId":         entryID,
		"redeliveryCount": redeliveryCount,
		"event":           "dead_lettered",
	}).Warn("message dead lettered")
}
