package models

import (
	"strconv"
	"strings"

	"github.com/central-university-dev/go-wallpost/internal/domain/errors"
)

type CallbackAction string

const (
	ActionDiscard     CallbackAction = "discard"
	ActionSend        CallbackAction = "send"
	ActionEditUser    CallbackAction = "edituser"
	ActionApprove     CallbackAction = "approve"
	ActionReject      CallbackAction = "reject"
	ActionRemark      CallbackAction = "remark"
	ActionAdminEdit   CallbackAction = "adminedit"
	ActionUserApprove CallbackAction = "userapprove"
	ActionUserBlock   CallbackAction = "userblock"
	ActionViewUser    CallbackAction = "viewuser"
	ActionMsgUser     CallbackAction = "msguser"
	ActionReqDel      CallbackAction = "reqdel"
	ActionAdminDel    CallbackAction = "admindel"
	ActionConfirmDel  CallbackAction = "confirmdel"
	ActionKeep        CallbackAction = "keep"
	ActionViewPost    CallbackAction = "viewpost"
	ActionManageUser  CallbackAction = "manageuser"
	ActionConfirm     CallbackAction = "confirm"
	ActionCancel      CallbackAction = "cancel"
	ActionWithdraw    CallbackAction = "withdraw"
)

var knownActions = map[CallbackAction]struct{}{
	ActionDiscard:     {},
	ActionSend:        {},
	ActionEditUser:    {},
	ActionApprove:     {},
	ActionReject:      {},
	ActionRemark:      {},
	ActionAdminEdit:   {},
	ActionUserApprove: {},
	ActionUserBlock:   {},
	ActionViewUser:    {},
	ActionMsgUser:     {},
	ActionReqDel:      {},
	ActionAdminDel:    {},
	ActionConfirmDel:  {},
	ActionKeep:        {},
	ActionViewPost:    {},
	ActionManageUser:  {},
	ActionConfirm:     {},
	ActionCancel:      {},
	ActionWithdraw:    {},
}

type Callback struct {
	Action   CallbackAction
	TargetID int64
}

// ParseCallback разбирает payload кнопки вида "<action>_<id>".
// Неизвестный токен действия отклоняется на границе, а не глубже в диспетчере.
func ParseCallback(data string) (*Callback, error) {
	idx := strings.LastIndex(data, "_")
	if idx <= 0 || idx == len(data)-1 {
		return nil, &errors.ErrUnknownCallback{Data: data}
	}

	action := CallbackAction(data[:idx])
	if _, ok := knownActions[action]; !ok {
		return nil, &errors.ErrUnknownCallback{Data: data}
	}

	targetID, err := strconv.ParseInt(data[idx+1:], 10, 64)
	if err != nil {
		return nil, &errors.ErrUnknownCallback{Data: data}
	}

	return &Callback{
		Action:   action,
		TargetID: targetID,
	}, nil
}

func CallbackData(action CallbackAction, targetID int64) string {
	return string(action) + "_" + strconv.FormatInt(targetID, 10)
}

type Button struct {
	Text string
	Data string
}

type Keyboard [][]Button
