package criteria

import (
	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/dao"
)

// FilterByState evaluates state list parameters against an instance state.
// An empty parameter set matches everything.
func FilterByState(state model.State, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "State" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return string(state) == actual
			case []string:
				for _, candidate := range actual {
					if string(state) == candidate {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
