package apptest

import "errors"

var errFKOrderItems = errors.New("order_items_order_id_fkey: el pedido aún tiene líneas")
