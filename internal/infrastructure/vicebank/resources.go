package vicebank

import (
	"context"
	"errors"
	"net/url"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
)

// resourceSpec describes one per-user resource on the wire.
type resourceSpec[T, W any] struct {
	name string

	listPath string
	// listKey wraps the list response. Empty means the server answers with
	// a bare array.
	listKey string
	// itemKey wraps the single-entity response of add, update and delete.
	itemKey string

	addPath, addKey       string
	updatePath, updateKey string
	deletePath, deleteKey string

	toWire   func(T) W
	fromWire func(W) (T, error)
	// draft builds the add payload, leaving out server-assigned fields.
	draft func(T) any
}

// resource implements ports.ResourceAPI for one resourceSpec.
type resource[T, W any] struct {
	c    *Client
	spec resourceSpec[T, W]
}

var _ ports.ResourceAPI[domain.Action] = (*resource[domain.Action, actionWire])(nil)

func (r *resource[T, W]) List(ctx context.Context, vbUserID string) ([]T, error) {
	op := "list " + r.spec.name
	raw, err := r.c.get(ctx, op, r.spec.listPath, url.Values{"vbUserId": {vbUserID}})
	if err != nil {
		return nil, err
	}

	body := raw
	if r.spec.listKey != "" {
		if body, err = envelope(op, raw, r.spec.listKey); err != nil {
			return nil, err
		}
	}

	wires, err := decodeList[W](r.c, op, body)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(wires))
	for _, w := range wires {
		item, err := r.spec.fromWire(w)
		if err != nil {
			return nil, &domain.ValidationError{Op: op, Problems: []string{err.Error()}}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *resource[T, W]) Add(ctx context.Context, item T) (T, error) {
	op := "add " + r.spec.name
	return r.send(ctx, op, r.spec.addPath, map[string]any{r.spec.addKey: r.spec.draft(item)})
}

func (r *resource[T, W]) Update(ctx context.Context, item T) (T, error) {
	op := "update " + r.spec.name
	return r.send(ctx, op, r.spec.updatePath, map[string]any{r.spec.updateKey: r.spec.toWire(item)})
}

func (r *resource[T, W]) Delete(ctx context.Context, id string) (T, error) {
	op := "delete " + r.spec.name
	if id == "" {
		var zero T
		return zero, errors.New(op + ": id is required")
	}
	return r.send(ctx, op, r.spec.deletePath, map[string]string{r.spec.deleteKey: id})
}

func (r *resource[T, W]) send(ctx context.Context, op, path string, body any) (T, error) {
	var zero T
	raw, err := r.c.post(ctx, op, path, body)
	if err != nil {
		return zero, err
	}
	inner, err := envelope(op, raw, r.spec.itemKey)
	if err != nil {
		return zero, err
	}
	w, err := decodeOne[W](r.c, op, inner)
	if err != nil {
		return zero, err
	}
	item, err := r.spec.fromWire(w)
	if err != nil {
		return zero, &domain.ValidationError{Op: op, Problems: []string{err.Error()}}
	}
	return item, nil
}

var actionSpec = resourceSpec[domain.Action, actionWire]{
	name:       "action",
	listPath:   "/vice_bank/actions",
	listKey:    "actions",
	itemKey:    "action",
	addPath:    "/vice_bank/addAction",
	addKey:     "action",
	updatePath: "/vice_bank/updateAction",
	updateKey:  "action",
	deletePath: "/vice_bank/deleteAction",
	deleteKey:  "actionId",
	toWire:     actionToWire,
	fromWire:   actionFromWire,
	draft:      newAction,
}

var taskSpec = resourceSpec[domain.Task, taskWire]{
	name:       "task",
	listPath:   "/vice_bank/tasks",
	listKey:    "tasks",
	itemKey:    "task",
	addPath:    "/vice_bank/addTask",
	addKey:     "taskToAdd",
	updatePath: "/vice_bank/updateTask",
	updateKey:  "task",
	deletePath: "/vice_bank/deleteTask",
	deleteKey:  "taskId",
	toWire:     taskToWire,
	fromWire:   taskFromWire,
	draft:      newTask,
}

var rewardSpec = resourceSpec[domain.Reward, rewardWire]{
	name:       "reward",
	listPath:   "/vice_bank/rewards",
	itemKey:    "reward",
	addPath:    "/vice_bank/addReward",
	addKey:     "rewardToAdd",
	updatePath: "/vice_bank/updateReward",
	updateKey:  "reward",
	deletePath: "/vice_bank/deleteReward",
	deleteKey:  "rewardId",
	toWire:     rewardToWire,
	fromWire:   rewardFromWire,
	draft:      newReward,
}

var purchaseSpec = resourceSpec[domain.Purchase, purchaseWire]{
	name:       "purchase",
	listPath:   "/vice_bank/purchases",
	listKey:    "purchases",
	itemKey:    "purchase",
	addPath:    "/vice_bank/addPurchase",
	addKey:     "purchase",
	updatePath: "/vice_bank/updatePurchase",
	updateKey:  "purchase",
	deletePath: "/vice_bank/deletePurchase",
	deleteKey:  "purchaseId",
	toWire:     purchaseToWire,
	fromWire:   purchaseFromWire,
	draft:      newPurchase,
}

var actionDepositSpec = resourceSpec[domain.ActionDeposit, actionDepositWire]{
	name:       "action deposit",
	listPath:   "/vice_bank/actionDeposits",
	listKey:    "actionDeposits",
	itemKey:    "actionDeposit",
	addPath:    "/vice_bank/addActionDeposit",
	addKey:     "actionDeposit",
	updatePath: "/vice_bank/updateActionDeposit",
	updateKey:  "actionDeposit",
	deletePath: "/vice_bank/deleteActionDeposit",
	deleteKey:  "actionDepositId",
	toWire:     actionDepositToWire,
	fromWire:   actionDepositFromWire,
	draft:      newActionDeposit,
}

var taskDepositSpec = resourceSpec[domain.TaskDeposit, taskDepositWire]{
	name:       "task deposit",
	listPath:   "/vice_bank/taskDeposits",
	listKey:    "taskDeposits",
	itemKey:    "taskDeposit",
	addPath:    "/vice_bank/addTaskDeposit",
	addKey:     "taskDeposit",
	updatePath: "/vice_bank/updateTaskDeposit",
	updateKey:  "taskDeposit",
	deletePath: "/vice_bank/deleteTaskDeposit",
	deleteKey:  "taskDepositId",
	toWire:     taskDepositToWire,
	fromWire:   taskDepositFromWire,
	draft:      newTaskDeposit,
}
