package orders

const TopicNotification = "order.notification"

// Partition key = order id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
