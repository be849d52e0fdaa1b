package clarifai

type outputsRequest struct {
	UserAppID userAppID `json:"user_app_id"`
	Inputs    []input   `json:"inputs"`
}

type userAppID struct {
	UserID string `json:"user_id"`
	AppID  string `json:"app_id"`
}

type input struct {
	Data inputData `json:"data"`
}

type inputData struct {
	Text textData `json:"text"`
}

type textData struct {
	Raw string `json:"raw"`
}

type apiStatus struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Details     string `json:"details"`
	ReqID       string `json:"req_id"`
}

type outputsResponse struct {
	Status  apiStatus `json:"status"`
	Outputs []struct {
		Status apiStatus `json:"status"`
		Data   struct {
			Text *textData `json:"text"`
		} `json:"data"`
	} `json:"outputs"`
}
